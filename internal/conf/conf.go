// Package conf holds the service configuration scanned from configs/config.yaml
// and LISTINGS_ prefixed environment variables.
package conf

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bootstrap is the root of the configuration tree.
type Bootstrap struct {
	Server    *Server    `json:"server"`
	Data      *Data      `json:"data"`
	Events    *Events    `json:"events"`
	Log       *Log       `json:"log"`
	RateLimit *RateLimit `json:"rate_limit"`
}

type Server struct {
	Http *Server_HTTP `json:"http"`
}

type Server_HTTP struct {
	Network string    `json:"network"`
	Addr    string    `json:"addr"`
	Timeout *Duration `json:"timeout"`
}

type Data struct {
	Database *Data_Database `json:"database"`
	Redis    *Data_Redis    `json:"redis"`
	Cache    *Data_Cache    `json:"cache"`
}

type Data_Database struct {
	Dsn             string    `json:"dsn"`
	MaxOpenConns    int32     `json:"max_open_conns"`
	MinConns        int32     `json:"min_conns"`
	ConnMaxLifetime *Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime *Duration `json:"conn_max_idle_time"`
}

type Data_Redis struct {
	Addr         string    `json:"addr"`
	Password     string    `json:"password"`
	Db           int       `json:"db"`
	ReadTimeout  *Duration `json:"read_timeout"`
	WriteTimeout *Duration `json:"write_timeout"`
}

type Data_Cache struct {
	ListingTtl *Duration `json:"listing_ttl"`
	SearchTtl  *Duration `json:"search_ttl"`
	LruSize    int       `json:"lru_size"`
}

type Events struct {
	NatsUrl       string    `json:"nats_url"`
	SubjectPrefix string    `json:"subject_prefix"`
	PollInterval  *Duration `json:"poll_interval"`
	BatchSize     int       `json:"batch_size"`
}

type Log struct {
	Env   string `json:"env"`
	Level string `json:"level"`
}

type RateLimit struct {
	RequestsPerMinute int `json:"requests_per_minute"`
	Burst             int `json:"burst"`
}

// Duration is a time.Duration written as a Go duration string ("5m", "100ms").
type Duration struct {
	time.Duration
}

// NewDuration wraps d.
func NewDuration(d time.Duration) *Duration {
	return &Duration{Duration: d}
}

// AsDuration returns the wrapped value, zero for a nil receiver.
func (d *Duration) AsDuration() time.Duration {
	if d == nil {
		return 0
	}
	return d.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}

// Nil-safe getters in the style of generated config types.

func (x *Events) GetNatsUrl() string {
	if x == nil {
		return ""
	}
	return x.NatsUrl
}

func (x *Events) GetSubjectPrefix() string {
	if x == nil {
		return ""
	}
	return x.SubjectPrefix
}

func (x *Events) GetPollInterval() time.Duration {
	if x == nil {
		return 0
	}
	return x.PollInterval.AsDuration()
}

func (x *Events) GetBatchSize() int {
	if x == nil {
		return 0
	}
	return x.BatchSize
}

func (x *Data_Cache) GetListingTtl() time.Duration {
	if x == nil {
		return 0
	}
	return x.ListingTtl.AsDuration()
}

func (x *Data_Cache) GetSearchTtl() time.Duration {
	if x == nil {
		return 0
	}
	return x.SearchTtl.AsDuration()
}

func (x *Data_Cache) GetLruSize() int {
	if x == nil {
		return 0
	}
	return x.LruSize
}

func (x *Log) GetEnv() string {
	if x == nil {
		return ""
	}
	return x.Env
}

func (x *Log) GetLevel() string {
	if x == nil {
		return ""
	}
	return x.Level
}

func (x *RateLimit) GetRequestsPerMinute() int {
	if x == nil {
		return 0
	}
	return x.RequestsPerMinute
}

func (x *RateLimit) GetBurst() int {
	if x == nil {
		return 0
	}
	return x.Burst
}

func (x *Bootstrap) GetServer() *Server {
	if x == nil {
		return nil
	}
	return x.Server
}

func (x *Bootstrap) GetData() *Data {
	if x == nil {
		return nil
	}
	return x.Data
}

func (x *Bootstrap) GetEvents() *Events {
	if x == nil {
		return nil
	}
	return x.Events
}

func (x *Bootstrap) GetLog() *Log {
	if x == nil {
		return nil
	}
	return x.Log
}

func (x *Bootstrap) GetRateLimit() *RateLimit {
	if x == nil {
		return nil
	}
	return x.RateLimit
}

func (x *Server) GetHttp() *Server_HTTP {
	if x == nil {
		return nil
	}
	return x.Http
}

func (x *Data) GetCache() *Data_Cache {
	if x == nil {
		return nil
	}
	return x.Cache
}
