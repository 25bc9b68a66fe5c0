package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"stem_dashboard/internal/config"
	"stem_dashboard/internal/model"
	"stem_dashboard/internal/util"
	"stem_dashboard/pkg/logger"
	"stem_dashboard/pkg/monitoring"
	"stem_dashboard/pkg/tracing"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	keyNumRequests = "num_requests"
	keyWaitTime    = "wait_time"

	// 非 2xx 时错误信息中保留的响应体长度
	maxDiagnosticBody = 512
)

// StatsSource 统计数据来源
type StatsSource interface {
	Fetch(ctx context.Context, kind model.RangeKind, value string) model.FetchOutcome
}

// StatsFetcher 通过 GET <base>?<range>=<value>&courses=<courses> 获取预计算的统计数据。
// 不重试、不退避，超时由配置决定（默认无超时）。
type StatsFetcher struct {
	client *http.Client

	mu      sync.RWMutex
	baseURL string
	courses string
}

func NewStatsFetcher(cfg *config.StatsConfig) *StatsFetcher {
	return &StatsFetcher{
		client: &http.Client{
			Transport: tracing.Transport(nil),
			Timeout:   cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		courses: cfg.Courses,
	}
}

// SetEndpoint 配置热更新时替换请求地址
func (f *StatsFetcher) SetEndpoint(baseURL, courses string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.baseURL = baseURL
	if courses != "" {
		f.courses = courses
	}
}

func (f *StatsFetcher) requestURL(kind model.RangeKind, value string) (string, error) {
	f.mu.RLock()
	base, courses := f.baseURL, f.courses
	f.mu.RUnlock()

	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(string(kind), value)
	q.Set("courses", courses)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (f *StatsFetcher) Fetch(ctx context.Context, kind model.RangeKind, value string) model.FetchOutcome {
	ctx, span := tracing.Tracer.Start(ctx, "stats.fetch", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("stats.range", string(kind)),
		attribute.String("stats.value", value),
	)

	start := time.Now()
	outcome := f.fetch(ctx, kind, value)
	monitoring.StatsFetchDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	result := "success"
	if outcome.Err != nil {
		result = "failure"
		if errors.Is(outcome.Err, util.ErrMalformedResponse) {
			result = "malformed"
		}
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, outcome.Err.Error())
		logger.Log.Warn("Stats fetch failed",
			zap.String("range", string(kind)),
			zap.String("value", value),
			zap.Error(outcome.Err))
	}
	monitoring.StatsFetchCounter.WithLabelValues(string(kind), result).Inc()

	return outcome
}

func (f *StatsFetcher) fetch(ctx context.Context, kind model.RangeKind, value string) model.FetchOutcome {
	target, err := f.requestURL(kind, value)
	if err != nil {
		return model.FetchOutcome{Err: util.NewFetchFailure(err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return model.FetchOutcome{Err: util.NewFetchFailure(err)}
	}
	req.Header.Set("Accept", util.MimeJSON)

	resp, err := f.client.Do(req)
	if err != nil {
		return model.FetchOutcome{Err: util.NewFetchFailure(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBody))
		return model.FetchOutcome{Err: util.NewFetchFailure(
			fmt.Errorf("stats endpoint returned %s: %s", resp.Status, body))}
	}

	demand, waitTime, err := DecodeStats(resp.Body)
	if err != nil {
		return model.FetchOutcome{Err: err}
	}

	logger.Log.Debug("Stats fetched",
		zap.String("range", string(kind)),
		zap.String("value", value),
		zap.Int("buckets", demand.Len()))

	return model.FetchOutcome{Demand: demand, WaitTime: waitTime}
}

// DecodeStats 按响应体中键的原始顺序解析 num_requests 与 wait_time。
// JSON 语法错误归为 FetchFailure；结构不符（缺键、非数字值）归为 MalformedResponse。
func DecodeStats(r io.Reader) (model.ChartDataset, model.ChartDataset, error) {
	var demand, waitTime model.ChartDataset
	var haveDemand, haveWait bool

	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return demand, waitTime, err
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return demand, waitTime, util.NewFetchFailure(err)
		}
		key, _ := tok.(string)

		switch key {
		case keyNumRequests:
			if demand, err = decodeSeries(dec, key); err != nil {
				return demand, waitTime, err
			}
			haveDemand = true
		case keyWaitTime:
			if waitTime, err = decodeSeries(dec, key); err != nil {
				return demand, waitTime, err
			}
			haveWait = true
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return demand, waitTime, util.NewFetchFailure(err)
			}
		}
	}

	if _, err := dec.Token(); err != nil {
		return demand, waitTime, util.NewFetchFailure(err)
	}

	if !haveDemand {
		return demand, waitTime, util.NewMalformedResponse("missing %q", keyNumRequests)
	}
	if !haveWait {
		return demand, waitTime, util.NewMalformedResponse("missing %q", keyWaitTime)
	}
	return demand, waitTime, nil
}

func decodeSeries(dec *json.Decoder, name string) (model.ChartDataset, error) {
	ds := model.NewChartDataset()
	if err := expectDelim(dec, '{'); err != nil {
		var fe *util.FetchError
		if errors.As(err, &fe) && errors.Is(fe.Kind, util.ErrMalformedResponse) {
			return ds, util.NewMalformedResponse("%q is not an object", name)
		}
		return ds, err
	}

	// 重复键保留首次出现的位置、取最后的值
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return ds, util.NewFetchFailure(err)
		}
		label, _ := tok.(string)

		tok, err = dec.Token()
		if err != nil {
			return ds, util.NewFetchFailure(err)
		}
		num, ok := tok.(json.Number)
		if !ok {
			if d, isDelim := tok.(json.Delim); isDelim {
				return ds, util.NewMalformedResponse("%s[%q] is %v, not a number", name, label, d)
			}
			return ds, util.NewMalformedResponse("%s[%q] is not a number", name, label)
		}
		value, err := num.Float64()
		if err != nil {
			return ds, util.NewMalformedResponse("%s[%q]: %v", name, label, err)
		}

		if i, seen := index[label]; seen {
			ds.Values[i] = value
			continue
		}
		index[label] = ds.Len()
		ds.Append(label, value)
	}

	if _, err := dec.Token(); err != nil {
		return ds, util.NewFetchFailure(err)
	}
	return ds, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return util.NewFetchFailure(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return util.NewMalformedResponse("expected %v, got %v", want, tok)
	}
	return nil
}
