package domain

import "github.com/supabase-community/supabase-go"

// SupabaseClient provides the Supabase connection used by the seed table.
type SupabaseClient interface {
	Initialize() error
	DB() *supabase.Client
}
