package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/localvault/localvault/pkg/vault"
)

// Repository implements vault.Repository using in-memory storage
type Repository struct {
	mu           sync.RWMutex
	nextUserID   int64
	users        map[int64]*vault.User
	usersByPhone map[string]int64
	contents     map[uuid.UUID]*vault.Content
}

// New creates a new in-memory repository
func New() vault.Repository {
	return &Repository{
		users:        make(map[int64]*vault.User),
		usersByPhone: make(map[string]int64),
		contents:     make(map[uuid.UUID]*vault.Content),
	}
}

// User operations

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*vault.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, vault.ErrUserNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (r *Repository) GetUserByPhone(ctx context.Context, phoneNumber string) (*vault.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.usersByPhone[phoneNumber]
	if !exists {
		return nil, vault.ErrUserNotFound
	}
	userCopy := *r.users[id]
	return &userCopy, nil
}

func (r *Repository) UpsertVerifiedUser(ctx context.Context, phoneNumber string) (*vault.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if id, exists := r.usersByPhone[phoneNumber]; exists {
		user := r.users[id]
		user.Verified = true
		user.Active = true
		user.UpdatedAt = now
		userCopy := *user
		return &userCopy, nil
	}

	r.nextUserID++
	user := &vault.User{
		ID:          r.nextUserID,
		PhoneNumber: phoneNumber,
		Verified:    true,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.users[user.ID] = user
	r.usersByPhone[phoneNumber] = user.ID

	userCopy := *user
	return &userCopy, nil
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, content *vault.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	r.contents[content.ID] = copyContent(content)
	return nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*vault.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, exists := r.contents[id]
	if !exists {
		return nil, vault.ErrContentNotFound
	}
	return copyContent(content), nil
}

func (r *Repository) ListContent(ctx context.Context, params vault.ListContentParams) ([]*vault.Content, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*vault.Content
	for _, content := range r.contents {
		if content.OwnerID != params.OwnerID {
			continue
		}
		if params.Kind != nil && content.Kind != *params.Kind {
			continue
		}
		if params.Search != "" && !matchesSearch(content, params.Search) {
			continue
		}
		matched = append(matched, content)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))

	if params.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[params.Offset:]
	if params.Limit > 0 && params.Limit < len(matched) {
		matched = matched[:params.Limit]
	}

	page := make([]*vault.Content, 0, len(matched))
	for _, content := range matched {
		page = append(page, copyContent(content))
	}
	return page, total, nil
}

func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[id]; !exists {
		return vault.ErrContentNotFound
	}
	delete(r.contents, id)
	return nil
}

func (r *Repository) ContentStats(ctx context.Context, ownerID int64) (*vault.StatsSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &vault.StatsSummary{}
	for _, content := range r.contents {
		if content.OwnerID != ownerID {
			continue
		}
		stats.TotalCount++
		switch content.Kind {
		case vault.KindText:
			stats.TextCount++
		case vault.KindFile:
			stats.FileCount++
			stats.TotalFileBytes += content.File.Size
		}
	}
	return stats, nil
}

// matchesSearch implements the OR search semantics: a record matches when
// the term occurs case-insensitively in the title, the inline text body, or
// the original filename.
func matchesSearch(content *vault.Content, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(content.Title), term) {
		return true
	}
	if content.Text != nil && strings.Contains(strings.ToLower(content.Text.Body), term) {
		return true
	}
	if content.File != nil && strings.Contains(strings.ToLower(content.File.OriginalName), term) {
		return true
	}
	return false
}

func copyContent(content *vault.Content) *vault.Content {
	contentCopy := *content
	if content.Tags != nil {
		contentCopy.Tags = append([]string(nil), content.Tags...)
	}
	if content.File != nil {
		fileCopy := *content.File
		contentCopy.File = &fileCopy
	}
	if content.Text != nil {
		textCopy := *content.Text
		contentCopy.Text = &textCopy
	}
	return &contentCopy
}
