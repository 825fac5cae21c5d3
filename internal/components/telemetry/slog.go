package telemetry

import (
	"fmt"
	"log/slog"
)

// SlogAPI writes reports to the default slog logger.
type SlogAPI struct{}

// attrs turns report params into log attributes. Errors are logged under
// "err", anything else under "arg.<index>".
func attrs(id string, params []any) []any {
	out := make([]any, 0, 2+len(params)*2)
	if id != "" {
		out = append(out, "id", id)
	}
	for i, p := range params {
		if err, ok := p.(error); ok {
			out = append(out, "err", err.Error())
			continue
		}
		out = append(out, fmt.Sprintf("arg.%d", i), p)
	}
	return out
}

func (SlogAPI) ReportBroken(id string, params ...any) {
	slog.Error("broken", attrs(id, params)...)
}

func (SlogAPI) ReportWarning(id string, params ...any) {
	slog.Warn("warning", attrs(id, params)...)
}

func (SlogAPI) ReportDebug(message string, params ...any) {
	slog.Debug(message, attrs("", params)...)
}

func (SlogAPI) ReportCount(id string, count int64) {
	slog.Debug("count", "id", id, "count", count)
}
