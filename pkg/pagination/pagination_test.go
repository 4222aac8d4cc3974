package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func ctxFor(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(ctxFor(""))
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset)
	}
}

func TestFromContext_SkipLimit(t *testing.T) {
	p := FromContext(ctxFor("?skip=40&limit=20"))
	if p.Limit != 20 || p.Offset != 40 {
		t.Errorf("expected limit=20 offset=40, got %+v", p)
	}
}

func TestFromContext_OffsetAlias(t *testing.T) {
	p := FromContext(ctxFor("?offset=15"))
	if p.Offset != 15 {
		t.Errorf("expected offset 15, got %d", p.Offset)
	}
}

func TestFromContext_MaxLimit(t *testing.T) {
	p := FromContext(ctxFor("?limit=5000"))
	if p.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_InvalidValues(t *testing.T) {
	p := FromContext(ctxFor("?skip=-5&limit=abc"))
	if p.Offset != 0 || p.Limit != DefaultLimit {
		t.Errorf("expected defaults for invalid input, got %+v", p)
	}
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse([]string{"a", "b"}, 10, 2, 0)
	if !resp.HasMore {
		t.Error("expected has_more for first page")
	}
	resp = NewResponse([]string{"a"}, 10, 2, 9)
	if resp.HasMore {
		t.Error("expected no more results on last page")
	}
}

func TestParams_Next(t *testing.T) {
	p := Params{Limit: 10, Offset: 20}
	if !p.HasNext(31) || p.HasNext(30) {
		t.Error("unexpected HasNext result")
	}
	if p.NextOffset() != 30 {
		t.Errorf("expected next offset 30, got %d", p.NextOffset())
	}
}
