package feed

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/mock"

	"github.com/petermazzocco/go-feed-api/models"
)

// memUsers is an in-memory UserStore. Reads hand out copies so that only
// Save makes a change visible, as with a real store.
type memUsers struct {
	mu      sync.Mutex
	users   map[string]*models.User
	findErr error
	saveErr error
	saves   int
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = copyUser(u)
	}
	return m
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Posts = append(pq.StringArray{}, u.Posts...)
	return &c
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyUser(u), nil
}

func (m *memUsers) Save(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.users[u.ID] = copyUser(u)
	return nil
}

func (m *memUsers) get(id string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyUser(m.users[id])
}

// memPosts is an in-memory PostStore keeping insertion order.
type memPosts struct {
	mu        sync.Mutex
	order     []string
	posts     map[string]*models.Post
	createErr error
	saveErr   error
	deleteErr error
	clock     time.Time
	// afterWrite runs after every successful Create, Save or Delete.
	afterWrite func()
}

func newMemPosts() *memPosts {
	return &memPosts{posts: map[string]*models.Post{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memPosts) FindByID(_ context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *memPosts) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.order)), nil
}

func (m *memPosts) FindPage(_ context.Context, offset, limit int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Post{}
	for i := offset; i < len(m.order) && len(out) < limit; i++ {
		out = append(out, *m.posts[m.order[i]])
	}
	return out, nil
}

func (m *memPosts) Create(ctx context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.createErr != nil {
		return m.createErr
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.clock = m.clock.Add(time.Second)
	p.CreatedAt, p.UpdatedAt = m.clock, m.clock
	c := *p
	m.posts[p.ID] = &c
	m.order = append(m.order, p.ID)
	m.wrote()
	return nil
}

func (m *memPosts) Save(ctx context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.posts[p.ID]; !ok {
		return models.ErrNotFound
	}
	c := *p
	m.posts[p.ID] = &c
	m.wrote()
	return nil
}

func (m *memPosts) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.posts[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.posts, id)
	for i, pid := range m.order {
		if pid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.wrote()
	return nil
}

func (m *memPosts) wrote() {
	if m.afterWrite != nil {
		m.afterWrite()
	}
}

// seed inserts a post directly.
func (m *memPosts) seed(creatorID, title, imageURL string) *models.Post {
	p := &models.Post{Title: title, Content: "Some content", ImageURL: imageURL, CreatorID: creatorID}
	if err := m.Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

// memSink records stored and removed images.
type memSink struct {
	mu          sync.Mutex
	sep         string
	saved       map[string]string
	contentType map[string]string
	removed     []string
	saveErr     error
	removeErr   error
}

func newMemSink() *memSink {
	return &memSink{sep: "/", saved: map[string]string{}, contentType: map[string]string{}}
}

func (s *memSink) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.saveErr != nil {
		return "", s.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	p := fmt.Sprintf("images%s%s", s.sep, name)
	s.saved[p] = string(b)
	s.contentType[p] = contentType
	return p, nil
}

func (s *memSink) Remove(_ context.Context, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, p)
	return s.removeErr
}

// recPublisher records published events.
type recPublisher struct {
	mu     sync.Mutex
	events []PostEvent
	err    error
}

func (p *recPublisher) Publish(event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if event == EventPosts {
		p.events = append(p.events, payload.(PostEvent))
	}
	return nil
}

// stubProcessor is an ImageProcessor returning fixed results.
type stubProcessor struct {
	out  []byte
	mime string
	err  error
}

func (p stubProcessor) Prepare([]byte) ([]byte, string, error) {
	return p.out, p.mime, p.err
}

// MockPostStore mocks the PostStore interface.
type MockPostStore struct {
	mock.Mock
}

func (m *MockPostStore) FindByID(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockPostStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostStore) FindPage(ctx context.Context, offset, limit int) ([]models.Post, error) {
	args := m.Called(ctx, offset, limit)
	posts, _ := args.Get(0).([]models.Post)
	return posts, args.Error(1)
}

func (m *MockPostStore) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostStore) Save(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserStore mocks the UserStore interface.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserStore) Save(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
