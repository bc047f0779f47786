package booking

import "fmt"

// Money is an amount in paise. Prices and fees are whole rupees and GST is
// 18% of a whole-rupee base, so every stored amount is exact.
type Money int64

const (
	GoldPrice            Money = 150_00
	StandardPrice        Money = 100_00
	ConveniencePerTicket Money = 10_00

	// gstBasisPoints is the GST rate applied to the base fare.
	gstBasisPoints = 1800
)

// String formats m with two decimals, e.g. "502.00".
func (m Money) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d.%02d", sign, m/100, m%100)
}

// Price is the cost breakdown of a booking.
type Price struct {
	GoldSeats      int   `json:"gold_seats"`
	StandardSeats  int   `json:"standard_seats"`
	Base           Money `json:"base_paise"`
	GST            Money `json:"gst_paise"`
	ConvenienceFee Money `json:"convenience_fee_paise"`
	Total          Money `json:"total_paise"`
}

// Quote computes the price of gold and standard seat counts. Negative
// counts are treated as zero.
func Quote(gold, standard int) Price {
	gold, standard = max(gold, 0), max(standard, 0)
	base := GoldPrice*Money(gold) + StandardPrice*Money(standard)
	fee := ConveniencePerTicket * Money(gold+standard)
	gst := gstOn(base)
	return Price{
		GoldSeats:      gold,
		StandardSeats:  standard,
		Base:           base,
		GST:            gst,
		ConvenienceFee: fee,
		Total:          base + gst + fee,
	}
}

// gstOn rounds half up to the nearest paisa.
func gstOn(base Money) Money {
	return (base*gstBasisPoints + 5000) / 10000
}
