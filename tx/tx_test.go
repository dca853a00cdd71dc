package tx

import (
	"testing"

	"github.com/calehh/contest-app/contest"
	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keySigner struct {
	key ed25519.PrivKey
}

func (k keySigner) PublicKey() []byte { return k.key.PubKey().Bytes() }

func (k keySigner) Sign(data []byte) ([]byte, error) { return k.key.Sign(data) }

func TestSignAndVerify(t *testing.T) {
	signer := keySigner{key: ed25519.GenPrivKey()}
	btx := &ContestTx{
		Version: TxVersion1,
		Type:    TxTypeVote,
		Nonce:   3,
		Tx:      &VoteTx{Session: 1, Artist: "artist"},
	}
	require.NoError(t, btx.Sign("contest-test", signer))
	assert.True(t, btx.Verify("contest-test"))
	assert.False(t, btx.Verify("other-chain"))

	dat, err := MarshalContestTx(btx)
	require.NoError(t, err)
	decoded, err := UnmarshalContestTx(dat)
	require.NoError(t, err)
	assert.True(t, decoded.Verify("contest-test"))
	assert.Equal(t, &VoteTx{Session: 1, Artist: "artist"}, decoded.Tx)

	sender, err := decoded.Sender()
	require.NoError(t, err)
	assert.Equal(t, contest.AccountID(signer.key.PubKey().Address().String()), sender)

	decoded.Nonce = 4
	assert.False(t, decoded.Verify("contest-test"))
}

func TestUnmarshalRejectsUnknownInput(t *testing.T) {
	_, err := UnmarshalContestTx([]byte(`{"version":1,"type":99}`))
	assert.ErrorIs(t, err, ErrUnsupportedTxType)

	_, err = UnmarshalContestTx([]byte(`not json`))
	assert.ErrorIs(t, err, ErrUnsupportedTxType)

	_, err = UnmarshalContestTx([]byte(`{"version":0,"type":6,"tx":{"session":1}}`))
	assert.ErrorIs(t, err, ErrUnsupportedTxVersion)
}

func TestSenderRequiresKey(t *testing.T) {
	_, err := (&ContestTx{}).Sender()
	assert.ErrorIs(t, err, ErrInvalidPubKey)
}
