// Package archive locates and loads the files of an exported
// activity archive, either from a zip file or an already
// extracted directory, and maps them to the normalizers that
// understand them.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AyGoub/gramview/internal/analyze"
	"github.com/AyGoub/gramview/internal/event"
	"github.com/AyGoub/gramview/internal/normalize"
)

// SourceDef describes one known archive file: the substring that
// identifies it by name and the parser that normalizes it.
// Matching by substring rather than full path tolerates the
// export's numbered variants (followers_1.json, followers_2.json)
// and folder reshuffles across platform versions.
type SourceDef struct {
	Name  string // stable source name, used in status reports
	Match string // file base name substring
	Parse normalize.ParseFunc
}

// Registry lists all recognized event sources. Order matters:
// the first def whose Match hits a file's base name claims it.
var Registry = []SourceDef{
	{"followers", "followers_", normalize.Followers},
	{"following", "following.json", normalize.Following},
	{"unfollowed", "unfollowed", normalize.Unfollowed},
	{"follow_requests", "follow_requests", normalize.FollowRequests},
	{"liked_posts", "liked_posts", normalize.LikedPosts},
	{"liked_comments", "liked_comments", normalize.LikedComments},
	{"post_comments", "post_comments", normalize.PostComments},
	{"reels_comments", "reels_comments", normalize.ReelComments},
}

// topicsMatch identifies the topic-preferences file, which
// yields theme labels rather than events.
const topicsMatch = "recommended_topics"

// Archive is an indexed view of an export's JSON files. Close
// removes the temp extraction directory for zip-backed archives
// and is a no-op otherwise.
type Archive struct {
	root    string
	files   []string // paths relative to root, walk order
	cleanup bool
}

// Open loads an archive from path, which may be a zip file or a
// directory containing the extracted export.
func Open(path string) (*Archive, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	if info.IsDir() {
		return OpenDir(path)
	}
	return OpenZip(path)
}

// OpenDir indexes the JSON files under an extracted export
// directory.
func OpenDir(dir string) (*Archive, error) {
	a := &Archive{root: dir}
	err := filepath.WalkDir(dir,
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip inaccessible entries
			}
			if d.IsDir() ||
				!strings.HasSuffix(d.Name(), ".json") {
				return nil
			}
			rel, relErr := filepath.Rel(dir, path)
			if relErr != nil {
				return nil
			}
			a.files = append(a.files, rel)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", dir, err)
	}
	return a, nil
}

// OpenZip extracts a zip export to a temp directory and indexes
// it. The caller must Close the archive to reclaim the space.
func OpenZip(path string) (*Archive, error) {
	tmp, err := os.MkdirTemp("", "gramview-archive-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}

	if err := extractZip(path, tmp); err != nil {
		os.RemoveAll(tmp)
		return nil, err
	}

	a, err := OpenDir(tmp)
	if err != nil {
		os.RemoveAll(tmp)
		return nil, err
	}
	a.cleanup = true
	return a, nil
}

// extractZip unpacks JSON entries of the zip into destDir,
// refusing entries that would escape it.
func extractZip(path, destDir string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening zip %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() ||
			!strings.HasSuffix(f.Name, ".json") {
			continue
		}
		dst := filepath.Join(destDir, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(
			dst, filepath.Clean(destDir)+string(os.PathSeparator),
		) {
			return fmt.Errorf("zip entry escapes archive: %s", f.Name)
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
		if err := extractFile(f, dst); err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, dst string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

// Close removes the extraction directory for zip-backed archives.
func (a *Archive) Close() error {
	if !a.cleanup {
		return nil
	}
	return os.RemoveAll(a.root)
}

// Root returns the directory the archive's files live under.
func (a *Archive) Root() string {
	return a.root
}

// find returns the indexed files whose base name contains match.
func (a *Archive) find(match string) []string {
	var out []string
	for _, rel := range a.files {
		if strings.Contains(filepath.Base(rel), match) {
			out = append(out, rel)
		}
	}
	return out
}

// claimedBy returns the first registry def matching the file's
// base name, or -1.
func claimedBy(rel string) int {
	base := filepath.Base(rel)
	for i, def := range Registry {
		if strings.Contains(base, def.Match) {
			return i
		}
	}
	return -1
}

// Load normalizes every recognized source in the archive. One
// unreadable or malformed file is reported in its SourceStatus
// and does not block the other sources. The returned collections
// follow registry order, giving the merge a deterministic
// tie-break across categories.
func (a *Archive) Load() ([]event.Collection, []analyze.SourceStatus) {
	perDef := make(map[int][]string)
	for _, rel := range a.files {
		if i := claimedBy(rel); i >= 0 {
			perDef[i] = append(perDef[i], rel)
		}
	}

	var (
		collections []event.Collection
		statuses    []analyze.SourceStatus
	)
	for i, def := range Registry {
		files := perDef[i]
		if len(files) == 0 {
			continue
		}
		var records []event.Record
		status := analyze.SourceStatus{Name: def.Name}
		for _, rel := range files {
			data, err := os.ReadFile(filepath.Join(a.root, rel))
			if err != nil {
				status.Err = fmt.Sprintf("reading %s: %v", rel, err)
				continue
			}
			parsed, err := def.Parse(data)
			if err != nil {
				status.Err = fmt.Sprintf("parsing %s: %v", rel, err)
				continue
			}
			records = append(records, parsed...)
		}
		status.Events = len(records)
		statuses = append(statuses, status)
		if len(records) > 0 {
			collections = append(collections, event.Collection{
				Name:    def.Name,
				Records: records,
			})
		}
	}
	return collections, statuses
}

// Topics parses the topic-preferences file when present. A
// missing or malformed file yields no labels, never an error:
// theme tagging simply stays off.
func (a *Archive) Topics() []string {
	for _, rel := range a.find(topicsMatch) {
		data, err := os.ReadFile(filepath.Join(a.root, rel))
		if err != nil {
			continue
		}
		topics, err := normalize.Topics(data)
		if err == nil && len(topics) > 0 {
			return topics
		}
	}
	return nil
}
