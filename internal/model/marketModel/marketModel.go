package marketModel

// Alpha Vantage payloads. Numbers arrive as strings.

type AlphaVantageGlobalQuote struct {
	GlobalQuote  map[string]string `json:"Global Quote"`
	Note         string            `json:"Note"`
	Information  string            `json:"Information"`
	ErrorMessage string            `json:"Error Message"`
}

type AlphaVantageDailySeries struct {
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
	ErrorMessage string                       `json:"Error Message"`
}

// Indian Stock API payloads.

type IndianStock struct {
	CompanyName  string            `json:"companyName"`
	CurrentPrice map[string]string `json:"currentPrice"`
}

type IndianHistorical struct {
	Datasets []IndianDataset `json:"datasets"`
}

type IndianDataset struct {
	Metric string  `json:"metric"`
	Label  string  `json:"label"`
	Values [][]any `json:"values"`
}
