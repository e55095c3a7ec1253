package librelinkup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://api.libreview.io", BaseURL(""))
	assert.Equal(t, "https://api-us.libreview.io", BaseURL("us"))
	assert.Equal(t, "https://api-ae.libreview.io", BaseURL("ae"))
}

func TestValidRegion(t *testing.T) {
	for _, region := range []string{"", "us", "eu2", "ae"} {
		assert.True(t, ValidRegion(region), region)
	}
	for _, region := range []string{"EU", "evil.example/x?", "eu-2", "a b", "toolongregion"} {
		assert.False(t, ValidRegion(region), region)
	}
}

func TestAccountID(t *testing.T) {
	assert.Equal(t, "0a041b9462caa4a31bac3567e0b6e6fd9100787db2ab433d96f6d178cabfce90", AccountID("user1"))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", AccountID(""))
	assert.Len(t, AccountID("anything"), 64)
}

func TestProfileByName(t *testing.T) {
	tests := []struct {
		name    string
		want    Profile
		wantErr bool
	}{
		{name: "", want: DefaultProfile},
		{name: "ios", want: ProfileIOS},
		{name: "android", want: ProfileAndroid},
		{name: "android-legacy", want: ProfileAndroidLegacy},
		{name: "windows-phone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProfileByName(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownProfile)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, []string{"android", "android-legacy", "ios"}, ProfileNames())
}

func TestTrendArrow(t *testing.T) {
	tests := []struct {
		trend  TrendArrow
		name   string
		symbol string
	}{
		{TrendFallingQuickly, "FALLING_QUICKLY", "↓"},
		{TrendFalling, "FALLING", "↘"},
		{TrendStable, "STABLE", "→"},
		{TrendRising, "RISING", "↗"},
		{TrendRisingQuickly, "RISING_QUICKLY", "↑"},
		{TrendUnknown, "UNKNOWN", "?"},
		{TrendArrow(42), "UNKNOWN", "?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.trend.String())
			assert.Equal(t, tt.symbol, tt.trend.Symbol())
		})
	}
}

func TestGlucoseItemTime(t *testing.T) {
	t.Run("local timestamp", func(t *testing.T) {
		item := GlucoseItem{Timestamp: "1/2/2024 4:04:05 PM", FactoryTimestamp: "1/2/2024 3:04:05 PM"}
		want := time.Date(2024, 1, 2, 16, 4, 5, 0, time.Local)
		assert.True(t, want.Equal(item.Time()))
	})

	t.Run("factory fallback", func(t *testing.T) {
		item := GlucoseItem{FactoryTimestamp: "12/31/2023 11:59:00 PM"}
		want := time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)
		assert.True(t, want.Equal(item.Time()))
	})

	t.Run("unparseable", func(t *testing.T) {
		assert.True(t, GlucoseItem{Timestamp: "yesterday"}.Time().IsZero())
	})
}

func TestUnitsAndConversion(t *testing.T) {
	assert.Equal(t, "mg/dL", UnitMgPerDl.String())
	assert.Equal(t, "mmol/L", UnitMmolPerL.String())

	assert.Equal(t, 10.0, MgPerDlToMmol(180))
	assert.Equal(t, 5.5, MgPerDlToMmol(100))
	assert.Equal(t, 3.9, MgPerDlToMmol(70))
}

func TestConnectionFullName(t *testing.T) {
	tests := []struct {
		name string
		conn Connection
		want string
	}{
		{"both names", Connection{FirstName: "Jane", LastName: "Doe"}, "Jane Doe"},
		{"first only", Connection{FirstName: "Jane"}, "Jane"},
		{"last only", Connection{LastName: "Doe"}, "Doe"},
		{"patient id fallback", Connection{PatientID: "p1"}, "p1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.conn.FullName())
		})
	}
}

func TestTimes(t *testing.T) {
	assert.True(t, AuthTicket{}.ExpiresAt().IsZero())
	assert.Equal(t, int64(1700000000), AuthTicket{Expires: 1700000000}.ExpiresAt().Unix())
	assert.True(t, Sensor{}.ActivatedAt().IsZero())
	assert.Equal(t, int64(1699000000), HistoryPeriod{DateStart: 1699000000}.Start().Unix())
	assert.Equal(t, int64(1700000000), HistoryPeriod{DateEnd: 1700000000}.End().Unix())
}
