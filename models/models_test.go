package models

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNewInvoiceID(t *testing.T) {
	pattern := regexp.MustCompile(`^INV-[A-Z0-9]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := NewInvoiceID()
		require.Regexp(t, pattern, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestMoney_BSONRoundTrip(t *testing.T) {
	type doc struct {
		Amount Money `bson:"amount"`
	}
	raw, err := bson.Marshal(doc{Amount: MustMoney("1250.50")})
	require.NoError(t, err)

	var out doc
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.True(t, out.Amount.Equal(MustMoney("1250.5").Decimal))
}

func TestMoney_DecodesLegacyNumbers(t *testing.T) {
	type doc struct {
		Amount Money `bson:"amount"`
	}
	var out doc
	raw, err := bson.Marshal(bson.M{"amount": int32(50000)})
	require.NoError(t, err)
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.Equal(t, "50000", out.Amount.String())
}

func TestMoney_JSONAsString(t *testing.T) {
	data, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Amount: MustMoney("50000")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"50000"}`, string(data))
}

func TestMoneyFromString_Invalid(t *testing.T) {
	_, err := MoneyFromString("fifty")
	assert.Error(t, err)
}

func TestPesapalCallback_IsIPN(t *testing.T) {
	assert.False(t, PesapalCallback{OrderTrackingID: "t"}.IsIPN())
	assert.True(t, PesapalCallback{OrderTrackingID: "t", OrderNotificationType: "IPNCHANGE"}.IsIPN())
}

func TestIsPaymentSource(t *testing.T) {
	assert.True(t, IsPaymentSource(SourcePesapal))
	assert.True(t, IsPaymentSource(SourceAzamPay))
	assert.False(t, IsPaymentSource(SourceWebsite))
	assert.False(t, IsPaymentSource("WhatsApp"))
}
