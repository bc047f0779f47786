package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote_TwoGoldOneStandard(t *testing.T) {
	p := Quote(2, 1)
	assert.Equal(t, Money(400_00), p.Base)
	assert.Equal(t, Money(30_00), p.ConvenienceFee)
	assert.Equal(t, Money(72_00), p.GST)
	assert.Equal(t, Money(502_00), p.Total)
	assert.Equal(t, "502.00", p.Total.String())
}

func TestQuote_IsLinear(t *testing.T) {
	for gold := 0; gold <= 10; gold++ {
		for standard := 0; standard <= 10; standard++ {
			one := Quote(gold, standard)
			two := Quote(2*gold, 2*standard)
			assert.Equal(t, 2*one.Base, two.Base, "%d/%d", gold, standard)
			assert.Equal(t, 2*one.GST, two.GST, "%d/%d", gold, standard)
			assert.Equal(t, 2*one.ConvenienceFee, two.ConvenienceFee, "%d/%d", gold, standard)
			assert.Equal(t, 2*one.Total, two.Total, "%d/%d", gold, standard)
		}
	}
}

func TestQuote_GSTOnBaseOnly(t *testing.T) {
	p := Quote(0, 1)
	assert.Equal(t, Money(18_00), p.GST)
	assert.Equal(t, Money(128_00), p.Total)
}

func TestQuote_ZeroAndNegative(t *testing.T) {
	assert.Equal(t, Price{}, Quote(0, 0))
	assert.Equal(t, Price{}, Quote(-1, -4))
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "0.00", Money(0).String())
	assert.Equal(t, "1.05", Money(105).String())
	assert.Equal(t, "177.00", Money(177_00).String())
	assert.Equal(t, "-3.50", Money(-350).String())
}
