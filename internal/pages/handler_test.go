package pages

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zuschusscheck-web/internal/web"
)

func newPagesRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tmpl, err := web.Templates()
	require.NoError(t, err)
	content, err := LoadContent()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	h := NewHandler(content, "39,00 €", "5MB")
	h.RegisterRoutes(&r.RouterGroup)
	r.NoRoute(h.NotFound)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHomeShowsPriceAndFAQ(t *testing.T) {
	rec := get(newPagesRouter(t), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "39,00 €")
	assert.Contains(t, body, "max. 5MB")
	assert.Contains(t, body, "Welche Dateien kann ich hochladen?")
	assert.Contains(t, body, `href="/upload"`)
}

func TestLegalPagesRender(t *testing.T) {
	r := newPagesRouter(t)
	cases := map[string]string{
		"/agb":         "Allgemeine Geschäftsbedingungen (AGB)",
		"/datenschutz": "Datenschutzerklärung",
		"/widerruf":    "Widerrufsbelehrung",
		"/garantie":    "20-Punkte-Verbesserungs-Garantie",
		"/impressum":   "Impressum",
	}
	for path, title := range cases {
		t.Run(path, func(t *testing.T) {
			rec := get(r, path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "<h1>"+title+"</h1>")
		})
	}
}

func TestGuaranteeListsConditions(t *testing.T) {
	rec := get(newPagesRouter(t), "/garantie")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "um mindestens 20 Punkte verbessert")
	assert.Contains(t, body, "Vollständige Umsetzung aller 3 Fixes")
	assert.Contains(t, body, "innerhalb von 30 Tagen nach Erhalt des ersten Reports")
	assert.Contains(t, body, "garantiertes Minimum 45/100")
	assert.Contains(t, body, "Rückerstattung erfolgt innerhalb von 14 Tagen")
	for _, heading := range []string{
		"§ 1 Garantieumfang",
		"§ 2 Voraussetzungen für die Garantie",
		"§ 3 Ablauf der Garantie-Inanspruchnahme",
		"§ 4 Ausschlüsse und Einschränkungen",
		"§ 5 Rückerstattungsmodalitäten",
		"§ 6 Warum wir diese Garantie geben können",
		"§ 7 Kontakt",
	} {
		assert.Contains(t, body, "<h2>"+heading+"</h2>")
	}
	assert.NotContains(t, body, "weniger als 45 Punkte")
}

func TestUnknownPageIsNotFound(t *testing.T) {
	rec := get(newPagesRouter(t), "/preise")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParseContentRequiresTitles(t *testing.T) {
	_, err := ParseContent([]byte("pages:\n  agb:\n    updated: heute\n"))
	assert.Error(t, err)

	_, err = ParseContent([]byte("pages: [broken"))
	assert.Error(t, err)
}

func TestSlugsAreSorted(t *testing.T) {
	content, err := LoadContent()
	require.NoError(t, err)
	h := NewHandler(content, "", "")
	assert.Equal(t, []string{"agb", "datenschutz", "garantie", "impressum", "widerruf"}, h.Slugs())
}
