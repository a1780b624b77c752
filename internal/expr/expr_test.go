package expr

import (
	"errors"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		attributes map[string]any
		want       bool
		wantErr    error
	}{
		{
			name:       "comparison true",
			expression: `{">": [{"var": "makeYear"}, 2020]}`,
			attributes: map[string]any{"makeYear": 2021},
			want:       true,
		},
		{
			name:       "comparison false",
			expression: `{">": [{"var": "makeYear"}, 2020]}`,
			attributes: map[string]any{"makeYear": 2019},
			want:       false,
		},
		{
			name:       "and over attributes",
			expression: `{"and": [{"==": [{"var": "fuelType"}, "diesel"]}, {"<": [{"var": "tachometer"}, 200000]}]}`,
			attributes: map[string]any{"fuelType": "diesel", "tachometer": 150000},
			want:       true,
		},
		{
			name:       "missing variable is null",
			expression: `{"==": [{"var": "fuelType"}, "diesel"]}`,
			attributes: map[string]any{"make": "10"},
			want:       false,
		},
		{
			name:       "in operator",
			expression: `{"in": [{"var": "engineType"}, ["V6", "V8"]]}`,
			attributes: map[string]any{"engineType": "V8"},
			want:       true,
		},
		{
			name:       "empty expression",
			expression: "   ",
			attributes: nil,
			wantErr:    ErrEmptyExpression,
		},
		{
			name:       "malformed json",
			expression: `{"broken`,
			attributes: nil,
			wantErr:    ErrInvalidExpression,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expression, tt.attributes)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		wantErr    error
	}{
		{name: "valid comparison", expression: `{">": [{"var": "price"}, 100000]}`},
		{name: "valid nested", expression: `{"or": [{"==": [{"var": "make"}, "10"]}, {"==": [{"var": "make"}, "6"]}]}`},
		{name: "empty", expression: "", wantErr: ErrEmptyExpression},
		{name: "whitespace", expression: "  \t ", wantErr: ErrEmptyExpression},
		{name: "not json", expression: "make > 2020", wantErr: ErrInvalidExpression},
		{name: "truncated json", expression: `{"==": [`, wantErr: ErrInvalidExpression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.expression)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("want valid, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
		})
	}
}
