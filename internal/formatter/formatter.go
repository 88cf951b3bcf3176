// package formatter renders catalog objects, playlists and activity streams as CSV, Markdown, JSON or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
)

// Format names an output rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists every accepted format name.
var Formats = []Format{FormatText, FormatCSV, FormatMarkdown, FormatJSON}

// ParseFormat accepts a format name or its short form ("txt", "md").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
}

// Extension is the file extension used when writing the format to disk.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Detail is a one-line description of obj, shown next to its title.
func Detail(obj models.Object) string {
	switch o := obj.(type) {
	case *models.Artist:
		return fmt.Sprintf("%d tracks", o.TrackCount)
	case *models.Album:
		if o.ReleaseDate != "" {
			return fmt.Sprintf("by %s, %s", o.ArtistName, o.ReleaseDate)
		}
		return "by " + o.ArtistName
	case *models.Track:
		d := o.ArtistName
		if o.AlbumName != "" {
			d += " - " + o.AlbumName
		}
		return fmt.Sprintf("%s [%s]", d, shared.FormatDuration(o.Duration))
	case *models.Playlist:
		return fmt.Sprintf("by %s, %d tracks", o.OwnerName, o.TrackCount)
	case *models.User:
		if o.Username != nil {
			return "@" + *o.Username
		}
		return o.URL
	}
	return ""
}

func objectURL(obj models.Object) string {
	switch o := obj.(type) {
	case *models.Artist:
		return o.URL
	case *models.Album:
		return o.URL
	case *models.Track:
		return o.URL
	case *models.Playlist:
		return o.URL
	case *models.User:
		return o.URL
	}
	return ""
}

// ObjectsToCSV converts objects to CSV with columns: Key, Type, Title, Detail, URL
func ObjectsToCSV(objects []models.Object) ([]byte, error) {
	records := [][]string{{"Key", "Type", "Title", "Detail", "URL"}}
	for _, obj := range objects {
		records = append(records, []string{
			obj.ObjectKey(),
			obj.Kind().String(),
			obj.Title(),
			Detail(obj),
			objectURL(obj),
		})
	}
	return writeCSV(records)
}

// ObjectsToText lists objects one per line as "key  [kind] title (detail)".
func ObjectsToText(objects []models.Object) []byte {
	var buf bytes.Buffer
	for _, obj := range objects {
		fmt.Fprintf(&buf, "%-10s [%s] %s", obj.ObjectKey(), string(obj.Kind()), obj.Title())
		if d := Detail(obj); d != "" {
			fmt.Fprintf(&buf, " (%s)", d)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ObjectsToMarkdown renders objects as a Markdown table.
func ObjectsToMarkdown(objects []models.Object, site string) []byte {
	var buf bytes.Buffer
	buf.WriteString("| Key | Type | Title | Detail |\n")
	buf.WriteString("|---|---|---|---|\n")
	for _, obj := range objects {
		title := escapeCell(obj.Title())
		if u := objectURL(obj); u != "" && site != "" {
			title = fmt.Sprintf("[%s](%s/%s)", title, strings.TrimSuffix(site, "/"), strings.TrimPrefix(u, "/"))
		}
		fmt.Fprintf(&buf, "| %s | %s | %s | %s |\n", obj.ObjectKey(), obj.Kind().String(), title, escapeCell(Detail(obj)))
	}
	return buf.Bytes()
}

// RenderObjects renders objects in the given format.
func RenderObjects(objects []models.Object, format Format, site string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ObjectsToCSV(objects)
	case FormatMarkdown:
		return ObjectsToMarkdown(objects, site), nil
	case FormatJSON:
		return shared.MarshalJSON(objects, true)
	default:
		return ObjectsToText(objects), nil
	}
}

// SearchToText renders result counts followed by the matched objects.
func SearchToText(result *models.SearchResult) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d results (%d artists, %d albums, %d tracks, %d playlists, %d people)\n\n",
		result.NumberResults, result.ArtistCount, result.AlbumCount, result.TrackCount,
		result.PlaylistCount, result.PersonCount)
	buf.Write(ObjectsToText(result.Results))
	return buf.Bytes()
}

// ActivityToText renders an activity stream, one update per line with its subject indented below.
func ActivityToText(stream *models.ActivityStream) []byte {
	var buf bytes.Buffer
	for _, u := range stream.Updates {
		if u.Date != "" {
			fmt.Fprintf(&buf, "%s  ", u.Date)
		}
		buf.WriteString(u.Description)
		buf.WriteByte('\n')

		switch s := u.Subject.(type) {
		case models.AlbumsSubject:
			for _, a := range s.Albums {
				fmt.Fprintf(&buf, "    %s by %s\n", a.Name, a.ArtistName)
			}
		case models.ItemSubject:
			fmt.Fprintf(&buf, "    %s (%s)\n", s.Item.Title(), s.Item.Kind().String())
		case models.CommentSubject:
			fmt.Fprintf(&buf, "    %q\n", s.Comment)
		}
	}
	if stream.LastID != "" {
		fmt.Fprintf(&buf, "\nlast_id: %s\n", stream.LastID)
	}
	return buf.Bytes()
}

// ActivityToMarkdown renders an activity stream as a Markdown list.
func ActivityToMarkdown(stream *models.ActivityStream) []byte {
	var buf bytes.Buffer
	if stream.User != nil {
		fmt.Fprintf(&buf, "# Activity for %s\n\n", stream.User.Name)
	}
	for _, u := range stream.Updates {
		fmt.Fprintf(&buf, "- **%s** %s\n", u.Date, u.Description)
		switch s := u.Subject.(type) {
		case models.AlbumsSubject:
			for _, a := range s.Albums {
				fmt.Fprintf(&buf, "  - _%s_ by %s\n", a.Name, a.ArtistName)
			}
		case models.ItemSubject:
			fmt.Fprintf(&buf, "  - _%s_\n", s.Item.Title())
		case models.CommentSubject:
			fmt.Fprintf(&buf, "  > %s\n", s.Comment)
		}
	}
	return buf.Bytes()
}

// ExportToCSV converts a PlaylistExport to CSV format with columns: Key, Title, Artist, Album, Duration, URL
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	records := [][]string{{"Key", "Title", "Artist", "Album", "Duration", "URL"}}
	for _, track := range export.Tracks {
		records = append(records, []string{
			track.Key,
			track.Name,
			track.ArtistName,
			track.AlbumName,
			strconv.Itoa(track.Duration),
			track.URL,
		})
	}
	return writeCSV(records)
}

// ExportToMarkdown converts a PlaylistExport to Markdown format with optional cover image
func ExportToMarkdown(export *models.PlaylistExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	p := export.Playlist

	fmt.Fprintf(&buf, "# %s\n\n", p.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if p.OwnerName != "" {
		fmt.Fprintf(&buf, "**Owner**: %s\n", p.OwnerName)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(export.Tracks))
	fmt.Fprintf(&buf, "**Length**: %s\n", shared.FormatDuration(export.Duration()))
	if p.ShortURL != "" {
		fmt.Fprintf(&buf, "**Link**: %s\n", p.ShortURL)
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, track := range export.Tracks {
		albumPart := ""
		if track.AlbumName != "" {
			albumPart = fmt.Sprintf(" (%s)", track.AlbumName)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.ArtistName, track.Name, albumPart, shared.FormatDuration(track.Duration))
	}

	if len(export.Missing) > 0 {
		buf.WriteString("\n## Unavailable\n\n")
		for _, key := range export.Missing {
			fmt.Fprintf(&buf, "- %s\n", key)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Playlist.Name)
	if export.Playlist.OwnerName != "" {
		fmt.Fprintf(&buf, "Owner: %s\n", export.Playlist.OwnerName)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(export.Tracks))

	for i, track := range export.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.ArtistName, track.Name)
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes the playlist and its tracks as indented JSON
func ExportToJSON(export *models.PlaylistExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without tracks)
func ToMetadataJSON(playlist *models.Playlist) ([]byte, error) {
	meta := *playlist
	meta.TrackKeys = nil
	return shared.MarshalJSON(meta, true)
}

// RenderExport renders a PlaylistExport in the given format.
func RenderExport(export *models.PlaylistExport, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export, "")
	case FormatJSON:
		return ExportToJSON(export)
	default:
		return ExportToText(export)
	}
}

var imageClient = &http.Client{Timeout: 30 * time.Second}

// DownloadImage downloads an image (an object icon) from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	resp, err := imageClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to the playlist key as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(export *models.PlaylistExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Playlist.Key
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.Playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{TracksFile: tracksFile, MetadataFile: metadataFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
	// Warnings holds non-fatal failures, such as a cover that could not be fetched.
	Warnings []string
}

// WriteMarkdownExport exports a playlist to Markdown format in a dedicated directory.
//
// Directory name defaults to the playlist key. When the playlist has an icon it is
// saved next to the README as cover.jpg; a failed download is reported in Warnings.
func WriteMarkdownExport(export *models.PlaylistExport, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = export.Playlist.Key
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	var coverImageFilename string
	if icon := export.Playlist.Icon; icon != "" {
		if imageData, err := DownloadImage(icon); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to download cover image: %v", err))
		} else {
			coverImagePath := filepath.Join(outputDir, "cover.jpg")
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("failed to save cover image: %v", err))
			} else {
				coverImageFilename = "cover.jpg"
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {playlist.Key}_tracks.txt as the filename.
func WriteTextExport(export *models.PlaylistExport, path string) (string, error) {
	if path == "" {
		path = export.Playlist.Key + "_tracks.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

func writeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// WriteJSONExport exports a playlist and its tracks as JSON.
//
// Defaults to {playlist.Key}.json as the filename.
func WriteJSONExport(export *models.PlaylistExport, path string) (string, error) {
	if path == "" {
		path = export.Playlist.Key + ".json"
	}

	data, err := ExportToJSON(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}

// WriteExport writes export under dir in the given format and returns the files created
// along with any non-fatal warnings.
func WriteExport(export *models.PlaylistExport, format Format, dir string) (files []string, warnings []string, err error) {
	base := filepath.Join(dir, export.Playlist.Key)

	switch format {
	case FormatCSV:
		result, err := WriteCSVExport(export, base)
		if err != nil {
			return nil, nil, err
		}
		return []string{result.TracksFile, result.MetadataFile}, nil, nil
	case FormatMarkdown:
		result, err := WriteMarkdownExport(export, base)
		if err != nil {
			return nil, nil, err
		}
		return result.Files, result.Warnings, nil
	case FormatJSON:
		path, err := WriteJSONExport(export, base+".json")
		if err != nil {
			return nil, nil, err
		}
		return []string{path}, nil, nil
	default:
		path, err := WriteTextExport(export, base+"_tracks.txt")
		if err != nil {
			return nil, nil, err
		}
		return []string{path}, nil, nil
	}
}

// ManifestEntry records the outcome of exporting one playlist.
type ManifestEntry struct {
	PlaylistKey  string   `json:"playlist_key"`
	PlaylistName string   `json:"playlist_name"`
	Status       string   `json:"status"`
	Tracks       int      `json:"tracks"`
	Missing      []string `json:"missing,omitempty"`
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Manifest summarizes a bulk export.
type Manifest struct {
	Format            Format          `json:"format"`
	ExportedAt        time.Time       `json:"exported_at"`
	TotalPlaylists    int             `json:"total_playlists"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Playlists         []ManifestEntry `json:"playlists"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m *Manifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
