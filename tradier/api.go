package tradier

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// baseURL is a variable so tests can point the client at a local server.
var baseURL = "https://api.tradier.com"

func get(path, token string, out interface{}) error {
	req, err := http.NewRequest("GET", baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %s", err)
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	req.Header.Add("Accept", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response data: %s", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response data: %s", err)
	}

	return nil
}

// GetDailyHistory fetches daily OHLCV bars for symbol between start and end,
// both formatted YYYY-MM-DD.
func GetDailyHistory(symbol, start, end, token string) (*QuoteHistory, error) {
	path := fmt.Sprintf("/v1/markets/history?symbol=%s&interval=daily&start=%s&end=%s&session_filter=all", symbol, start, end)

	history := &QuoteHistory{}
	if err := get(path, token, history); err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %s", symbol, err)
	}

	return history, nil
}

// GetExpirations lists the option expirations for symbol.
func GetExpirations(symbol, token string) (*OptionExpirations, error) {
	path := fmt.Sprintf("/v1/markets/options/expirations?symbol=%s&includeAllRoots=true&strikes=true&contractSize=true&expirationType=true", symbol)

	expirations := &OptionExpirations{}
	if err := get(path, token, expirations); err != nil {
		return nil, fmt.Errorf("failed to fetch expirations for %s: %s", symbol, err)
	}

	return expirations, nil
}

// GetOptionChains fetches greeks-enriched chains for every expiration within
// [minDTE, maxDTE] days from now, keyed by expiration date.
func GetOptionChains(symbol, token string, minDTE, maxDTE int) (map[string]*OptionChain, error) {
	expirations, err := GetExpirations(symbol, token)
	if err != nil {
		return nil, err
	}

	chains := make(map[string]*OptionChain)
	today := time.Now()

	for _, expiration := range expirations.Expirations.Expiration {
		expTime, err := time.Parse("2006-01-02", expiration.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse expiration date %q: %s", expiration.Date, err)
		}

		dte := int(expTime.Sub(today).Hours() / 24)
		if dte < minDTE || dte > maxDTE {
			continue
		}

		path := fmt.Sprintf("/v1/markets/options/chains?symbol=%s&expiration=%s&greeks=true", symbol, expiration.Date)
		chain := &OptionChain{}
		if err := get(path, token, chain); err != nil {
			return nil, fmt.Errorf("failed to fetch chain for %s %s: %s", symbol, expiration.Date, err)
		}

		chains[expiration.Date] = chain
	}

	return chains, nil
}
