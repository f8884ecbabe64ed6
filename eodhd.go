package returns

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

const eodhd_api_key = "EODHD_API_KEY"

var eodhdApiFlag = flag.String("eodhd-api-key", "", "EODHD API key to use for fetching prices from EODHD.com.\n If missing it will read for the environment variable \""+eodhd_api_key+"\". You can get one at https://eodhd.com/")

func eodhdApiKey() string {
	// If the flag is not set, we try to read it from the environment variable.
	if *eodhdApiFlag == "" {
		*eodhdApiFlag = os.Getenv(eodhd_api_key)
	}
	return *eodhdApiFlag
}

// diskCache implements a simple disk cache for HTTP responses
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// get from disk
	// diskcache implements a unique key per day, so the local tmp expires every day.
	key := fmt.Sprintf("%s %s %s", Today().String(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	// otherwise attempt to store it in cache

	err = c.put(key, resp)
	if err != nil {
		log.Printf("cache write err (ignored): %v\n", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	file := filepath.Join(os.TempDir(), key)
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	file := filepath.Join(os.TempDir(), key)

	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}

	_, err = f.Write(content)
	f.Close()
	return err
}

// returns a client with a cache all with daily expire
func daily() *http.Client {
	client := new(http.Client)
	client.Transport = &diskCache{http.DefaultTransport}
	return client
}

// jwget performs an HTTP GET request and unmarshals the JSON response into the provided data structure.
func jwget(client *http.Client, addr string, data interface{}) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}

// PricePoint is one fetched end-of-day price.
type PricePoint struct {
	Date  Date
	Price decimal.Decimal
}

// FetchEODHD returns the daily closing prices of a ticker from EODHD.com for
// the given range. The ticker uses the EODHD form, e.g. "AAPL.US". Responses
// are cached on disk with a daily expiry.
func FetchEODHD(ticker string, r Range) ([]PricePoint, error) {
	apiKey := eodhdApiKey()
	if apiKey == "" {
		return nil, fmt.Errorf("missing EODHD API key: set -eodhd-api-key or %s", eodhd_api_key)
	}

	// https://eodhd.com/api/eod/AAPL.US?from=2024-01-01&to=2024-02-01&period=d&fmt=json
	// [
	//   {
	//     "date": "2024-01-02",
	//     "open": 187.15,
	//     "close": 185.64,
	//     "adjusted_close": 184.53,
	//     "volume": 82488700
	//   },
	addr := fmt.Sprintf("https://eodhd.com/api/eod/%s?from=%s&to=%s&period=d&fmt=json&api_token=%s",
		url.PathEscape(ticker), r.From, r.To, apiKey)

	var jobj any
	if err := jwget(daily(), addr, &jobj); err != nil {
		return nil, fmt.Errorf("cannot fetch prices for %q: %w", ticker, err)
	}

	jdates, err := jsonpath.Get("$[*].date", jobj)
	if err != nil {
		return nil, fmt.Errorf("cannot read dates for %q: %w", ticker, err)
	}
	jcloses, err := jsonpath.Get("$[*].adjusted_close", jobj)
	if err != nil {
		return nil, fmt.Errorf("cannot read prices for %q: %w", ticker, err)
	}

	dates, ok1 := jdates.([]any)
	closes, ok2 := jcloses.([]any)
	if !ok1 || !ok2 || len(dates) != len(closes) {
		return nil, fmt.Errorf("unexpected price payload for %q", ticker)
	}

	points := make([]PricePoint, 0, len(dates))
	for i := range dates {
		str, ok := dates[i].(string)
		if !ok {
			return nil, fmt.Errorf("unexpected date %v for %q", dates[i], ticker)
		}
		day, err := ParseDate(str)
		if err != nil {
			return nil, fmt.Errorf("unexpected date for %q: %w", ticker, err)
		}
		val, ok := closes[i].(float64)
		if !ok {
			return nil, fmt.Errorf("unexpected price %v for %q on %s", closes[i], ticker, day)
		}
		points = append(points, PricePoint{Date: day, Price: decimal.NewFromFloat(val)})
	}
	return points, nil
}
