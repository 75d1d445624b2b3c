package bankprofile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	registry := NewRegistry(Builtin())

	tests := []struct {
		name          string
		title         string
		content       string
		sourcePackage string
		wantBankID    string
		wantMatch     bool
	}{
		{
			name:          "matches by source package regardless of text",
			title:         "Notificación",
			content:       "Recibiste Bs. 150,50 de JUAN PEREZ",
			sourcePackage: "bo.com.bnb.movil",
			wantBankID:    "bnb",
			wantMatch:     true,
		},
		{
			name:       "matches by keyword in content",
			title:      "Transferencia recibida",
			content:    "Banco Union: abono de Bs 200 a tu cuenta",
			wantBankID: "union",
			wantMatch:  true,
		},
		{
			name:       "keyword match is case-insensitive",
			title:      "BANCO BISA",
			content:    "Abono recibido",
			wantBankID: "bisa",
			wantMatch:  true,
		},
		{
			name:      "unrelated text does not classify",
			title:     "Promo",
			content:   "2x1 en pizzas este fin de semana",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, ok := registry.Classify(tt.title, tt.content, tt.sourcePackage)
			require.Equal(t, tt.wantMatch, ok)
			if tt.wantMatch {
				assert.Equal(t, tt.wantBankID, profile.BankID)
			}
		})
	}
}

func TestLoadFileAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banks.yaml")
	content := `banks:
  - bankId: bnb
    displayName: BNB Override
    keywords: ["bnb movil"]
    amountMarkers:
      - token: "bs."
        currency: BOB
  - bankId: fassil
    displayName: Banco Fassil
    keywords: ["fassil"]
    amountMarkers:
      - token: "bs."
        currency: BOB
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	overrides, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, overrides, 2)

	merged := Merge(Builtin(), overrides)
	assert.Len(t, merged, len(Builtin())+1)

	registry := NewRegistry(merged)

	profile, ok := registry.Classify("", "deposito fassil bs. 100", "")
	require.True(t, ok)
	assert.Equal(t, "fassil", profile.BankID)

	profile, ok = registry.Classify("", "bnb movil abono", "")
	require.True(t, ok)
	assert.Equal(t, "BNB Override", profile.DisplayName)
}

func TestLoadFile_RejectsInvalidProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("banks:\n  - bankId: ghost\n"), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}
