package crypto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/calehh/contest-app/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeySaveLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "keys", "oracle_key.json")
	key := GenKey()
	require.NoError(t, key.Save(file))

	loaded, err := LoadKey(file)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), loaded.PublicKey())
	assert.Equal(t, key.Account(), loaded.Account())

	btx := &tx.ContestTx{Version: tx.TxVersion1, Type: tx.TxTypeFinalise, Tx: &tx.FinaliseTx{Session: 1}}
	require.NoError(t, btx.Sign("chain", loaded))
	assert.True(t, btx.Verify("chain"))
	sender, err := btx.Sender()
	require.NoError(t, err)
	assert.Equal(t, key.Account(), sender)
}

func TestLoadKeyErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadKey(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = LoadKey(bad)
	assert.Error(t, err)
}
