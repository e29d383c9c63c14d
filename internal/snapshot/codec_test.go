package snapshot

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/savingsjars/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() models.Snapshot {
	at := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	earned := decimal.NewFromInt(2200)
	return models.Snapshot{
		Version:    1,
		ExportedAt: at,
		Settings:   models.AppSettings{UserName: "ada", NotificationsEnabled: true, AverageDailyEarning: earned},
		Safe:       models.Safe{Balance: decimal.NewFromInt(500), UpdatedAt: at},
		Goals: []models.Goal{{
			ID:            "g1",
			Name:          "Holiday",
			TargetAmount:  decimal.NewFromInt(8000),
			CurrentAmount: decimal.NewFromInt(1200),
			CreatedAt:     at,
			UpdatedAt:     at,
		}},
		Contributions: []models.Contribution{{
			ID:        "c1",
			GoalID:    "g1",
			Amount:    decimal.NewFromInt(1200),
			Note:      "first",
			Date:      at,
			CreatedAt: at,
		}},
		WorkSessions: []models.WorkSession{{
			ID:            "s1",
			Date:          at.Truncate(24 * time.Hour),
			ShiftType:     models.ShiftDay,
			CreatedAt:     at,
			IsCompleted:   true,
			Status:        models.SessionCompleted,
			ActualEarning: &earned,
			CompletedAt:   &at,
		}},
		SafeTransactions: []models.SafeTransaction{{
			ID:        "t1",
			Amount:    decimal.NewFromInt(500),
			Type:      models.SafeDeposit,
			Date:      at,
			CreatedAt: at,
		}},
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			want := sampleSnapshot()

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, want, format))

			got, err := Decode(&buf, format)
			require.NoError(t, err)

			assert.Equal(t, want.Version, got.Version)
			assert.True(t, want.ExportedAt.Equal(got.ExportedAt))
			assert.Equal(t, "ada", got.Settings.UserName)
			assert.True(t, got.Safe.Balance.Equal(decimal.NewFromInt(500)))
			require.Len(t, got.Goals, 1)
			assert.True(t, got.Goals[0].CurrentAmount.Equal(decimal.NewFromInt(1200)))
			require.Len(t, got.WorkSessions, 1)
			require.NotNil(t, got.WorkSessions[0].ActualEarning)
			assert.True(t, got.WorkSessions[0].ActualEarning.Equal(decimal.NewFromInt(2200)))
			assert.Nil(t, got.WorkSessions[0].ActualContribution)
			require.Len(t, got.SafeTransactions, 1)
			assert.Equal(t, models.SafeDeposit, got.SafeTransactions[0].Type)
		})
	}
}

func TestDecode_TOMLUnknownKey(t *testing.T) {
	_, err := Decode(strings.NewReader("version = 1\nbogus = true\n"), FormatTOML)
	assert.ErrorContains(t, err, "unknown key bogus")
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader("{"), FormatJSON)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" TOML ")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)

	assert.Equal(t, FormatTOML, FormatFromPath("backup.TOML"))
	assert.Equal(t, FormatJSON, FormatFromPath("backup.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("backup"))
	assert.Equal(t, "application/toml", FormatTOML.ContentType())
}
