package queryparam

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soudan/casebook/internal/platform/dates"
)

func newContext(target string) echo.Context {
	e := echo.New()
	return e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
}

func TestID(t *testing.T) {
	c := newContext("/")
	c.SetParamNames("id")
	c.SetParamValues("42")
	id, err := ID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		c.SetParamValues(bad)
		_, err := ID(c, "id")
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "value %q", bad)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	}
}

func TestOptionalParams(t *testing.T) {
	c := newContext("/?min_age=18&staff_id=7&has_guardian=true&date_from=2025-04-01")

	n, err := Int(c, "min_age")
	require.NoError(t, err)
	assert.Equal(t, 18, *n)

	id, err := Int64(c, "staff_id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), *id)

	b, err := Bool(c, "has_guardian")
	require.NoError(t, err)
	assert.True(t, *b)

	d, err := Date(c, "date_from")
	require.NoError(t, err)
	assert.Equal(t, dates.New(2025, 4, 1), d)

	missing, err := Int(c, "max_age")
	require.NoError(t, err)
	assert.Nil(t, missing)

	zero, err := Date(c, "date_to")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestOptionalParams_Malformed(t *testing.T) {
	c := newContext("/?min_age=old&is_current=perhaps&date_from=2025/04/01")

	_, err := Int(c, "min_age")
	assert.Error(t, err)
	_, err = Bool(c, "is_current")
	assert.Error(t, err)
	assert.False(t, Flag(c, "is_current"))
	_, err = Date(c, "date_from")
	assert.Error(t, err)
}
