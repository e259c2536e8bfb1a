package memories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/everkeep/backend/internal/models"
)

// LatestSource supplies the latest-memories strip.
type LatestSource interface {
	Latest(ctx context.Context, limit int) ([]models.Memory, error)
}

// SupabaseSource reads the Memory table directly through Supabase, ordered by
// event date descending. It is an alternate read path next to the HTTP API
// and shares the Memory shape with it.
type SupabaseSource struct {
	client *supabase.Client
	table  string
}

// NewSupabaseSource constructs a source against the given Supabase project.
func NewSupabaseSource(projectURL, apiKey, table string) (*SupabaseSource, error) {
	client, err := supabase.NewClient(projectURL, apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseSource{client: client, table: table}, nil
}

// Latest returns the most recent memories by event date. The supabase client
// does not accept a context; the request runs on its internal HTTP client.
func (s *SupabaseSource) Latest(_ context.Context, limit int) ([]models.Memory, error) {
	if limit <= 0 {
		limit = 6
	}

	data, _, err := s.client.From(s.table).
		Select("*", "", false).
		Order("date", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		Execute()
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("supabase query: %w", err)}
	}

	var items []models.Memory
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode supabase rows: %w", err)
	}
	return items, nil
}

var _ LatestSource = (*SupabaseSource)(nil)
