package util

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownRange         = errors.New("unknown range kind")
	ErrUnknownChart         = errors.New("unknown chart")
	ErrUnknownClickTarget   = errors.New("unknown click target")
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrCatalogNotLoaded     = errors.New("course catalog not loaded")
	ErrMalformedCatalog     = errors.New("malformed course catalog")
	ErrUnknownStorageSource = errors.New("unknown storage source")

	// 统计接口错误类型
	ErrFetchFailure      = errors.New("fetch failure")
	ErrMalformedResponse = errors.New("malformed response")
)

// FetchError 统计请求失败，Kind 为 ErrFetchFailure 或 ErrMalformedResponse
type FetchError struct {
	Kind error
	Err  error
}

func NewFetchFailure(err error) *FetchError {
	return &FetchError{Kind: ErrFetchFailure, Err: err}
}

func NewMalformedResponse(format string, args ...interface{}) *FetchError {
	return &FetchError{Kind: ErrMalformedResponse, Err: fmt.Errorf(format, args...)}
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
