package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	ListPlaylists Phase = iota
	FetchPlaylist
	ExportPlaylist
	FetchPage
)

func (p Phase) String() string {
	switch p {
	case ListPlaylists:
		return "list_playlists"
	case FetchPlaylist:
		return "fetch_playlist"
	case ExportPlaylist:
		return "export_playlist"
	case FetchPage:
		return "fetch_page"
	default:
		return ""
	}
}

func listPlaylistsUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: ListPlaylists, Step: 1, Total: 1, Message: "Listing playlists..."}
}

func fetchPlaylistUpdate(step, total int, key string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching %s...", step, total, key),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func fetchPageUpdate(page, collected int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    page,
		Message: fmt.Sprintf("Fetching page %d (%d so far)...", page, collected),
		Data:    collected,
	}
}
