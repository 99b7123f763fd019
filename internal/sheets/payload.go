package sheets

import (
	"bytes"
	"encoding/json"
	"errors"

	"locoboard/internal/model"
)

var wrapperPrefix = []byte("setResponse(")

type response struct {
	Status string     `json:"status"`
	Errors []apiError `json:"errors"`
	Table  *table     `json:"table"`
}

type apiError struct {
	Reason          string `json:"reason"`
	Message         string `json:"message"`
	DetailedMessage string `json:"detailed_message"`
}

type table struct {
	Cols []column `json:"cols"`
	Rows []row    `json:"rows"`
}

type column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type row struct {
	C []*cell `json:"c"`
}

type cell struct {
	V any     `json:"v"`
	F *string `json:"f"`
}

// Unwrap strips the JavaScript callback around a gviz JSON payload.
func Unwrap(body []byte) ([]byte, error) {
	start := bytes.Index(body, wrapperPrefix)
	if start < 0 {
		return nil, errors.New("callback wrapper not found")
	}
	start += len(wrapperPrefix)
	end := bytes.LastIndexByte(body, ')')
	if end < start {
		return nil, errors.New("callback wrapper not closed")
	}
	return body[start:end], nil
}

// Decode parses a wrapped gviz payload into a raw table.
func Decode(sheet string, body []byte) (model.RawTable, error) {
	inner, err := Unwrap(body)
	if err != nil {
		return model.RawTable{}, &SourceFormatError{Sheet: sheet, Reason: err.Error()}
	}

	dec := json.NewDecoder(bytes.NewReader(inner))
	dec.UseNumber()
	var resp response
	if err := dec.Decode(&resp); err != nil {
		return model.RawTable{}, &SourceFormatError{Sheet: sheet, Reason: "invalid json", Err: err}
	}

	if resp.Status == "error" {
		details := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			switch {
			case e.DetailedMessage != "":
				details = append(details, e.DetailedMessage)
			case e.Message != "":
				details = append(details, e.Message)
			case e.Reason != "":
				details = append(details, e.Reason)
			}
		}
		return model.RawTable{}, &SourceAPIError{Sheet: sheet, Details: details}
	}
	if resp.Table == nil {
		return model.RawTable{}, &SourceFormatError{Sheet: sheet, Reason: "missing table"}
	}

	out := model.RawTable{
		Labels: make([]string, len(resp.Table.Cols)),
		Rows:   make([][]model.RawCell, 0, len(resp.Table.Rows)),
	}
	for i, c := range resp.Table.Cols {
		out.Labels[i] = c.Label
	}
	for _, r := range resp.Table.Rows {
		cells := make([]model.RawCell, len(r.C))
		for i, c := range r.C {
			if c == nil {
				continue
			}
			cells[i] = model.RawCell{Value: c.V, Formatted: c.F}
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}
