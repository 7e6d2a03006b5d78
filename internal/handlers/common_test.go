package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func testContext(t *testing.T, url string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, url, nil)
	return c, w
}

func TestParseCoordKeepsSignedValues(t *testing.T) {
	c, _ := testContext(t, "/matching/drivers?lat=-33.8688&lng=151.2093")

	lat, ok := parseCoord(c, "lat")
	if !ok || lat != -33.8688 {
		t.Errorf("lat = %f ok=%v, want -33.8688", lat, ok)
	}
	lng, ok := parseCoord(c, "lng")
	if !ok || lng != 151.2093 {
		t.Errorf("lng = %f ok=%v, want 151.2093", lng, ok)
	}
}

func TestParseCoordRejectsMissingAndMalformed(t *testing.T) {
	c, w := testContext(t, "/matching/drivers?lng=3.42")
	if _, ok := parseCoord(c, "lat"); ok {
		t.Error("missing lat accepted")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	c, w = testContext(t, "/matching/drivers?lat=north")
	if _, ok := parseCoord(c, "lat"); ok {
		t.Error("malformed lat accepted")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestParseQueryFloatFallsBackForNonPositive(t *testing.T) {
	c, _ := testContext(t, "/matching/drivers?radius=-5")
	if got := parseQueryFloat(c, "radius", 10); got != 10 {
		t.Errorf("radius = %f, want fallback 10", got)
	}

	c, _ = testContext(t, "/matching/drivers?radius=25")
	if got := parseQueryFloat(c, "radius", 10); got != 25 {
		t.Errorf("radius = %f, want 25", got)
	}
}
