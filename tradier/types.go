package tradier

// QuoteHistory mirrors the markets/history response.
type QuoteHistory struct {
	History struct {
		Day []DailyQuote `json:"day"`
	} `json:"history"`
}

// DailyQuote is a single daily OHLCV bar.
type DailyQuote struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int     `json:"volume"`
}

type OptionExpirations struct {
	Expirations struct {
		Expiration []struct {
			Date           string `json:"date"`
			ContractSize   int    `json:"contract_size"`
			ExpirationType string `json:"expiration_type"`
			Strikes        struct {
				Strike []float64 `json:"strike"`
			} `json:"strikes"`
		} `json:"expiration"`
	} `json:"expirations"`
}

// Option carries the subset of chain fields the pricer consumes.
type Option struct {
	Symbol         string       `json:"symbol"`
	Type           string       `json:"type"`
	Volume         int          `json:"volume"`
	Bid            float64      `json:"bid"`
	Ask            float64      `json:"ask"`
	Underlying     string       `json:"underlying"`
	Strike         float64      `json:"strike"`
	OpenInterest   int          `json:"open_interest"`
	ExpirationDate string       `json:"expiration_date"`
	OptionType     string       `json:"option_type"`
	RootSymbol     string       `json:"root_symbol"`
	Greeks         OptionGreeks `json:"greeks"`
}

// OptionGreeks holds the greeks and implied-volatility block Tradier
// attaches when chains are requested with greeks=true.
type OptionGreeks struct {
	Delta     float64 `json:"delta"`
	Gamma     float64 `json:"gamma"`
	Theta     float64 `json:"theta"`
	Vega      float64 `json:"vega"`
	Rho       float64 `json:"rho"`
	BidIv     float64 `json:"bid_iv"`
	MidIv     float64 `json:"mid_iv"`
	AskIv     float64 `json:"ask_iv"`
	SmvVol    float64 `json:"smv_vol"`
	UpdatedAt string  `json:"updated_at"`
}

type OptionChain struct {
	Options        OptionList `json:"options"`
	ExpirationDate string     `json:"expiration_date"`
}

type OptionList struct {
	Option []Option
}
