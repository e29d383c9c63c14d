package models

import "github.com/shopspring/decimal"

// AppSettings is the single user configuration record.
type AppSettings struct {
	UserName             string          `json:"userName" toml:"user_name"`
	NotificationsEnabled bool            `json:"notificationsEnabled" toml:"notifications_enabled"`
	AverageDailyEarning  decimal.Decimal `json:"averageDailyEarning" toml:"average_daily_earning"`
}

// DefaultSettings returns the settings used before anything was saved.
func DefaultSettings() AppSettings {
	return AppSettings{
		UserName:             "",
		NotificationsEnabled: true,
		AverageDailyEarning:  decimal.Zero,
	}
}
