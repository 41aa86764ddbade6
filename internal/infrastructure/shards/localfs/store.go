package localfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

var shardFilePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(?:_(\d+))?\.json$`)

// Store keeps shards as {basePath}/daily/{date}{suffix}.json.
type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if basePath == "" {
		basePath = "./content"
	}
	if err := os.MkdirAll(filepath.Join(basePath, "daily"), 0o755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) path(key domain.ShardKey) string {
	return filepath.Join(s.basePath, "daily", key.Filename())
}

func (s *Store) Fetch(_ context.Context, key domain.ShardKey) (*domain.Shard, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrShardNotFound, "open shard", err)
		}
		return nil, fmt.Errorf("open shard: %w", err)
	}
	defer f.Close()

	var shard domain.Shard
	if err := json.NewDecoder(f).Decode(&shard); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "decode shard "+key.Filename(), err)
	}
	return &shard, nil
}

// Put writes shard atomically through a temp file in the same directory.
func (s *Store) Put(_ context.Context, key domain.ShardKey, shard *domain.Shard) error {
	if shard == nil {
		return domain.WrapError(domain.ErrInvalidInput, "put shard", errors.New("shard is nil"))
	}
	raw, err := json.MarshalIndent(shard, "", "  ")
	if err != nil {
		return fmt.Errorf("encode shard: %w", err)
	}

	target := s.path(key)
	tmp, err := os.CreateTemp(filepath.Dir(target), ".shard-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write shard: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close shard: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename shard: %w", err)
	}
	return nil
}

// List returns the keys of every shard file present, newest date first.
func (s *Store) List(_ context.Context) ([]domain.ShardKey, error) {
	entries, err := os.ReadDir(filepath.Join(s.basePath, "daily"))
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}

	var keys []domain.ShardKey
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := shardFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		key := domain.ShardKey{Date: m[1]}
		if m[2] != "" {
			n, err := strconv.Atoi(m[2])
			if err != nil || n < 2 {
				continue
			}
			key.Index = n - 1
		}
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date > keys[j].Date
		}
		return keys[i].Index < keys[j].Index
	})
	return keys, nil
}
