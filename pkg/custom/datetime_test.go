package custom

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDatetimeJSON(t *testing.T) {
	d := Datetime(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))

	got, err := json.Marshal(&d)
	require.NoError(t, err)
	require.Equal(t, `"2024-03-01T12:30:00Z"`, string(got))

	var parsed Datetime
	require.NoError(t, json.Unmarshal(got, &parsed))
	require.True(t, time.Time(d).Equal(time.Time(parsed)))
}

func TestDatetimeJSONZero(t *testing.T) {
	var d Datetime

	got, err := json.Marshal(&d)
	require.NoError(t, err)
	require.Equal(t, `null`, string(got))

	var parsed Datetime
	require.NoError(t, json.Unmarshal([]byte(`null`), &parsed))
	require.True(t, parsed.IsZero())
}

func TestDatetimeJSONInvalid(t *testing.T) {
	var d Datetime
	require.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
}
