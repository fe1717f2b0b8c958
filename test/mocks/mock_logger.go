package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kevin07696/fonepay-service/internal/adapters/ports"
)

// MockLogger records every call made through the ports.Logger interface
type MockLogger struct {
	mu         sync.Mutex
	InfoCalls  []LogCall
	ErrorCalls []LogCall
	WarnCalls  []LogCall
	DebugCalls []LogCall
}

// LogCall is one recorded log entry
type LogCall struct {
	Message string
	Fields  []ports.Field
}

// Field returns the value of the named field, or nil
func (c LogCall) Field(key string) interface{} {
	for _, f := range c.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(calls *[]LogCall, msg string, fields []ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*calls = append(*calls, LogCall{Message: msg, Fields: fields})
}

func (m *MockLogger) Info(msg string, fields ...ports.Field) { m.record(&m.InfoCalls, msg, fields) }
func (m *MockLogger) Error(msg string, fields ...ports.Field) { m.record(&m.ErrorCalls, msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...ports.Field) { m.record(&m.WarnCalls, msg, fields) }
func (m *MockLogger) Debug(msg string, fields ...ports.Field) { m.record(&m.DebugCalls, msg, fields) }

// Mentions reports whether any recorded message or field value contains s
func (m *MockLogger) Mentions(s string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, calls := range [][]LogCall{m.InfoCalls, m.ErrorCalls, m.WarnCalls, m.DebugCalls} {
		for _, call := range calls {
			if strings.Contains(call.Message, s) {
				return true
			}
			for _, f := range call.Fields {
				if strings.Contains(fmt.Sprint(f.Value), s) {
					return true
				}
			}
		}
	}
	return false
}
