// Package feed fetches and normalizes lottery draw history from the
// upstream HTTP feed.
package feed

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Label is the binary classification of a draw, derived from the last
// digit of its number.
type Label string

const (
	Big   Label = "BIG"
	Small Label = "SMALL"
)

// Opposite returns the other label.
func (l Label) Opposite() Label {
	if l == Big {
		return Small
	}
	return Big
}

// LabelOf classifies a draw number: BIG when the last digit is 5-9,
// SMALL when it is 0-4.
func LabelOf(number int) Label {
	if number%10 >= 5 {
		return Big
	}
	return Small
}

// DrawRecord is one resolved draw. Label is always recomputed from
// Number, never taken from upstream.
type DrawRecord struct {
	Period string
	Number int
	Label  Label
}

// LastDigit returns the final digit of the draw number.
func (d DrawRecord) LastDigit() int {
	return d.Number % 10
}

// DataShapeError reports an upstream payload that does not match the
// expected {"data":{"list":[...]}} document.
type DataShapeError struct {
	Reason string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("unexpected feed payload: %s", e.Reason)
}

// flexInt accepts both bare and quoted JSON integers; the upstream has
// shipped both encodings for the draw number.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid draw number %q", s)
	}
	*n = flexInt(v)
	return nil
}

type historyItem struct {
	IssueNo string  `json:"issueNo"`
	Issue   string  `json:"issue"`
	Number  flexInt `json:"number"`
}

type historyEnvelope struct {
	Data *struct {
		List []historyItem `json:"list"`
	} `json:"data"`
}

// DecodeHistory parses an upstream history document and returns the
// draws in chronological order. Upstream delivers newest first, so the
// list is reversed.
func DecodeHistory(body []byte) ([]DrawRecord, error) {
	var envelope historyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &DataShapeError{Reason: err.Error()}
	}
	if envelope.Data == nil {
		return nil, &DataShapeError{Reason: "missing data field"}
	}
	if envelope.Data.List == nil {
		return nil, &DataShapeError{Reason: "missing data.list field"}
	}

	draws := make([]DrawRecord, 0, len(envelope.Data.List))
	for i := len(envelope.Data.List) - 1; i >= 0; i-- {
		record, err := normalize(envelope.Data.List[i])
		if err != nil {
			return nil, err
		}
		draws = append(draws, record)
	}
	return draws, nil
}

// normalize converts one raw upstream item into a DrawRecord.
func normalize(item historyItem) (DrawRecord, error) {
	period := item.IssueNo
	if period == "" {
		period = item.Issue
	}
	if period == "" {
		return DrawRecord{}, &DataShapeError{Reason: "item missing issueNo/issue"}
	}
	if item.Number < 0 {
		return DrawRecord{}, &DataShapeError{Reason: fmt.Sprintf("negative draw number %d in period %s", item.Number, period)}
	}

	return DrawRecord{
		Period: period,
		Number: int(item.Number),
		Label:  LabelOf(int(item.Number)),
	}, nil
}
