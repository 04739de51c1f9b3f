package pagination

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		page        string
		perPage     string
		wantPage    int
		wantPerPage int
	}{
		{"defaults on empty", "", "", 1, 20},
		{"explicit values", "3", "50", 3, 50},
		{"clamps perPage to max", "1", "5000", 1, 100},
		{"rejects zero page", "0", "10", 1, 10},
		{"rejects negative values", "-2", "-5", 1, 20},
		{"rejects garbage", "abc", "xyz", 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.page, tt.perPage)
			if p.Page != tt.wantPage {
				t.Errorf("expected page %d, got %d", tt.wantPage, p.Page)
			}
			if p.PerPage != tt.wantPerPage {
				t.Errorf("expected perPage %d, got %d", tt.wantPerPage, p.PerPage)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, PerPage: 20}
	if p.Offset() != 40 {
		t.Errorf("expected offset 40, got %d", p.Offset())
	}
	if p.Limit() != 20 {
		t.Errorf("expected limit 20, got %d", p.Limit())
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage([]string{"a", "b"}, 41, Params{Page: 1, PerPage: 20})
	if page.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", page.TotalPages)
	}
	if page.Total != 41 {
		t.Errorf("expected total 41, got %d", page.Total)
	}

	empty := NewPage[string](nil, 0, Params{Page: 1, PerPage: 20})
	if empty.Items == nil {
		t.Error("expected empty slice, got nil")
	}
	if empty.TotalPages != 0 {
		t.Errorf("expected 0 total pages, got %d", empty.TotalPages)
	}
}
