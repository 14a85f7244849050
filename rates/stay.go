package rates

// MaxStayNights bounds a single stay quote.
const MaxStayNights = 366

// NightlyRate is the resolved price for one night of a stay.
type NightlyRate struct {
	Date   Date
	Price  Money
	RuleID RuleID // empty when the base price applied
}

// StayQuote prices every night in [CheckIn, CheckOut).
type StayQuote struct {
	RoomTypeID RoomTypeID
	CheckIn    Date
	CheckOut   Date
	Nights     []NightlyRate
	Total      Money
}

// QuoteStay resolves each night of a stay independently and sums them.
// The check-out day is not a night and is not priced.
func QuoteStay(base Money, roomType RoomTypeID, checkIn, checkOut Date, rules []PricingRule) (StayQuote, error) {
	if err := validateStay(checkIn, checkOut); err != nil {
		return StayQuote{}, err
	}

	q := StayQuote{
		RoomTypeID: roomType,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Total:      base.Zero(),
	}
	for d := checkIn; d.Before(checkOut); d = d.AddDays(1) {
		res := Explain(base, roomType, d, rules)
		night := NightlyRate{Date: d, Price: res.Price}
		if res.Rule != nil {
			night.RuleID = res.Rule.ID
		}
		q.Nights = append(q.Nights, night)
		q.Total = q.Total.Add(res.Price)
	}
	q.Total = q.Total.Round()
	return q, nil
}

func validateStay(checkIn, checkOut Date) error {
	if checkIn.IsZero() || checkOut.IsZero() || !checkIn.Before(checkOut) {
		return ErrInvalidStay
	}
	if DaysBetween(checkIn, checkOut) > MaxStayNights {
		return ErrStayTooLong
	}
	return nil
}
