package lists

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"chelsa/internal/fileutil"
	"chelsa/internal/services"
)

// metadataSuffix derives sidecar names from manifest names.
const metadataSuffix = ".meta.json"

// MetadataPath returns the sidecar path paired with a manifest.
func MetadataPath(listPath string) string {
	return listPath + metadataSuffix
}

// WriteList writes the ordered filenames as newline-joined text with a
// trailing newline iff the list is non-empty, creating parent directories.
// Existing content is overwritten; manifests have rebuild semantics.
func WriteList(listPath string, names []string) error {
	if err := fileutil.EnsureParentDir(listPath); err != nil {
		return fmt.Errorf("prepare manifest directory: %w", err)
	}
	content := strings.Join(names, "\n")
	if len(names) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(listPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// SaveMetadata stamps the manifest's current digest into the metadata and
// serializes it to the paired sidecar.
func SaveMetadata(listPath string, md *Metadata) error {
	digest, err := fileutil.SHA1File(listPath)
	if err != nil {
		return fmt.Errorf("digest manifest: %w", err)
	}
	md.ListSHA1 = digest

	payload, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	metaPath := MetadataPath(listPath)
	if err := fileutil.EnsureParentDir(metaPath); err != nil {
		return fmt.Errorf("prepare metadata directory: %w", err)
	}
	if err := os.WriteFile(metaPath, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// LoadMetadata reads and validates the sidecar paired with a manifest. A
// missing sidecar is a NotFound error (prepare-lists was never run); a
// digest that disagrees with the manifest's current content is a Validation
// error (the manifest drifted since the sidecar was written).
func LoadMetadata(listPath string) (*Metadata, error) {
	base := filepath.Base(listPath)
	metaPath := MetadataPath(listPath)

	payload, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "lists", "load metadata",
				fmt.Sprintf("metadata missing for %s; run `chelsa prepare-lists` first", base), nil)
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var md Metadata
	if err := json.Unmarshal(payload, &md); err != nil {
		return nil, services.Wrap(services.ErrValidation, "lists", "load metadata",
			fmt.Sprintf("metadata for %s is not valid JSON", base), err)
	}

	if err := validateMetadata(listPath, &md); err != nil {
		return nil, err
	}
	return &md, nil
}

func validateMetadata(listPath string, md *Metadata) error {
	base := filepath.Base(listPath)
	if md.ListSHA1 == "" {
		return services.Wrap(services.ErrValidation, "lists", "validate metadata",
			fmt.Sprintf("metadata for %s is missing digest information", base), nil)
	}
	current, err := fileutil.SHA1File(listPath)
	if err != nil {
		return fmt.Errorf("digest manifest: %w", err)
	}
	if current != md.ListSHA1 {
		return services.Wrap(services.ErrValidation, "lists", "validate metadata",
			fmt.Sprintf("%s does not match its metadata digest; re-run `chelsa prepare-lists`", base), nil)
	}
	return nil
}

// Manifests returns the lexicographically sorted manifest paths for a kind
// under dir. A missing directory yields an empty result, not an error.
func Manifests(dir string, kind Kind) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat manifest directory: %w", err)
	}
	matches, err := filepath.Glob(filepath.Join(dir, string(kind)+"_*.txt"))
	if err != nil {
		return nil, fmt.Errorf("glob manifests: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// RefreshMetadata re-stamps sidecar digests under root for manifests whose
// text was deliberately edited after the last prepare-lists run. Returns the
// number of sidecars rewritten.
func RefreshMetadata(root string) (int, error) {
	updated := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".txt"+metadataSuffix) {
			return nil
		}
		listPath := strings.TrimSuffix(path, metadataSuffix)
		if _, statErr := os.Stat(listPath); statErr != nil {
			return nil
		}
		payload, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		var md Metadata
		if jsonErr := json.Unmarshal(payload, &md); jsonErr != nil {
			return nil
		}
		digest, digestErr := fileutil.SHA1File(listPath)
		if digestErr != nil {
			return digestErr
		}
		if md.ListSHA1 == digest {
			return nil
		}
		if saveErr := SaveMetadata(listPath, &md); saveErr != nil {
			return saveErr
		}
		updated++
		return nil
	})
	if err != nil {
		return updated, fmt.Errorf("refresh metadata: %w", err)
	}
	return updated, nil
}
