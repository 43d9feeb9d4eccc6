package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestT(t *testing.T) {
	require.NoError(t, Register(language.MustParse("nb"), "root.verbs.plan.planShort", "Vis endringer"))

	t.Run("translated", func(t *testing.T) {
		t.Setenv("POWEROPS_LANG", "nb_NO.UTF-8")
		assert.Equal(t, "Vis endringer", T("root.verbs.plan.planShort", "Show changes"))
	})

	t.Run("untranslated language", func(t *testing.T) {
		t.Setenv("POWEROPS_LANG", "en")
		assert.Equal(t, "Show changes", T("root.verbs.plan.planShort", "Show changes"))
	})

	t.Run("unknown key", func(t *testing.T) {
		t.Setenv("POWEROPS_LANG", "nb")
		assert.Equal(t, "Fallback", T("root.unknown", "Fallback"))
	})
}

func TestUserLanguage(t *testing.T) {
	t.Setenv("POWEROPS_LANG", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "C")
	assert.Equal(t, language.English, userLanguage())

	t.Setenv("LANG", "de_DE.UTF-8")
	assert.Equal(t, "de-DE", userLanguage().String())
}
