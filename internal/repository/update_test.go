package repository

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookshelf-labs/lending-service/internal/model"
)

func strPtr(v string) *string { return &v }

func TestBookUpdateSet(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		req  model.UpdateBook
		want map[string]interface{}
	}{
		{
			name: "empty partial keeps everything",
			req:  model.UpdateBook{},
			want: map[string]interface{}{},
		},
		{
			name: "only title provided",
			req:  model.UpdateBook{Title: strPtr("The Go Programming Language")},
			want: map[string]interface{}{"title": "The Go Programming Language"},
		},
		{
			name: "omitted author never overwritten with empty default",
			req: model.UpdateBook{
				Title:    strPtr("SICP"),
				Category: strPtr("textbook"),
			},
			want: map[string]interface{}{
				"title":    "SICP",
				"category": "textbook",
			},
		},
		{
			name: "status alone",
			req: model.UpdateBook{
				Status: func() *model.BookStatus { s := model.BookStatusBorrowed; return &s }(),
			},
			want: map[string]interface{}{"status": model.BookStatusBorrowed},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, bookUpdateSet(tt.req))
		})
	}
}

func TestMemberUpdateSet(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		req  model.UpdateMember
		want map[string]interface{}
	}{
		{
			name: "empty partial keeps everything",
			req:  model.UpdateMember{},
			want: map[string]interface{}{},
		},
		{
			name: "only phone provided",
			req:  model.UpdateMember{Phone: strPtr("+31-20-1234567")},
			want: map[string]interface{}{"phone": "+31-20-1234567"},
		},
		{
			name: "name and email, phone untouched",
			req: model.UpdateMember{
				Name:  strPtr("Ana"),
				Email: strPtr("ana@example.org"),
			},
			want: map[string]interface{}{
				"name":  "Ana",
				"email": "ana@example.org",
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, memberUpdateSet(tt.req))
		})
	}
}
