package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/types/daycontent"
	"akneDenikAPI/internal/types/message"
	"akneDenikAPI/internal/types/product"
	"akneDenikAPI/internal/types/profile"
	"akneDenikAPI/internal/types/subscription"
	"akneDenikAPI/internal/types/userlog"
)

// Memory keeps every collection in process. Fail, when set, is consulted before each operation
// and lets tests simulate an unreachable store.
type Memory struct {
	mu       sync.Mutex
	content  map[int]daycontent.DayContent
	logs     map[string]userlog.UserLog
	users    map[string]profile.UserProfile
	messages []message.Message
	products map[string]product.Product

	Fail func(op string) error
}

func NewMemory() *Memory {
	return &Memory{
		content:  make(map[int]daycontent.DayContent),
		logs:     make(map[string]userlog.UserLog),
		users:    make(map[string]profile.UserProfile),
		products: make(map[string]product.Product),
	}
}

func (m *Memory) fail(op string) error {
	if m.Fail == nil {
		return nil
	}
	if err := m.Fail(op); err != nil {
		return apperr.Unavailable(op, err)
	}
	return nil
}

func (m *Memory) GetDayContent(ctx context.Context, day int) (daycontent.DayContent, error) {
	if err := m.fail("GetDayContent"); err != nil {
		return daycontent.DayContent{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.content[day]
	if !ok {
		return daycontent.DayContent{}, apperr.NotFound("GetDayContent", "no content for day %d", day)
	}
	return checkDayContent(day, c)
}

func (m *Memory) PutDayContent(ctx context.Context, c daycontent.DayContent) error {
	if err := m.fail("PutDayContent"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[c.Day] = c
	return nil
}

func (m *Memory) DeleteDayContent(ctx context.Context, day int) error {
	if err := m.fail("DeleteDayContent"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.content, day)
	return nil
}

func (m *Memory) ListDayContent(ctx context.Context) ([]daycontent.DayContent, error) {
	if err := m.fail("ListDayContent"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]daycontent.DayContent, 0, len(m.content))
	for day, c := range m.content {
		if checked, err := checkDayContent(day, c); err == nil {
			out = append(out, checked)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (m *Memory) GetProfile(ctx context.Context, userID string) (profile.UserProfile, error) {
	if err := m.fail("GetProfile"); err != nil {
		return profile.UserProfile{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.users[userID]
	if !ok {
		return profile.UserProfile{}, apperr.NotFound("GetProfile", "user %s not found", userID)
	}
	return copyProfile(p), nil
}

func (m *Memory) FindLog(ctx context.Context, userID string, day int) (userlog.UserLog, error) {
	if err := m.fail("FindLog"); err != nil {
		return userlog.UserLog{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.findLogLocked(userID, day); ok {
		return l, nil
	}
	return userlog.UserLog{}, apperr.NotFound("FindLog", "no log for day %d", day)
}

func (m *Memory) findLogLocked(userID string, day int) (userlog.UserLog, bool) {
	for _, l := range m.logs {
		if l.UserID == userID && l.Day == day {
			return l, true
		}
	}
	return userlog.UserLog{}, false
}

func (m *Memory) ListLogs(ctx context.Context, userID string) ([]userlog.UserLog, error) {
	if err := m.fail("ListLogs"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]userlog.UserLog, 0)
	for _, l := range m.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

// LogCount exposes the number of stored logs so tests can assert upserts.
func (m *Memory) LogCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

func (m *Memory) CommitDay(ctx context.Context, userID string, day int, commit func(profile.UserProfile, *userlog.UserLog) (profile.UserProfile, userlog.UserLog, error)) (profile.UserProfile, userlog.UserLog, error) {
	if err := m.fail("CommitDay"); err != nil {
		return profile.UserProfile{}, userlog.UserLog{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.users[userID]
	if !ok {
		p = profile.New(userID)
	}
	var existing *userlog.UserLog
	if l, found := m.findLogLocked(userID, day); found {
		existing = &l
	}

	next, log, err := commit(copyProfile(p), existing)
	if err != nil {
		return profile.UserProfile{}, userlog.UserLog{}, err
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	m.logs[log.ID] = log
	m.users[userID] = copyProfile(next)
	return next, log, nil
}

func (m *Memory) SetSubscription(ctx context.Context, userID string, sub subscription.Subscription) error {
	if err := m.fail("SetSubscription"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.users[userID]
	if !ok {
		p = profile.New(userID)
	}
	p.Subscription = sub
	m.users[userID] = p
	return nil
}

func (m *Memory) AddDeviceToken(ctx context.Context, userID, token string) error {
	if err := m.fail("AddDeviceToken"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.users[userID]
	if !ok {
		p = profile.New(userID)
	}
	for _, t := range p.DeviceTokens {
		if t == token {
			return nil
		}
	}
	p.DeviceTokens = append(append([]string(nil), p.DeviceTokens...), token)
	m.users[userID] = p
	return nil
}

func (m *Memory) AddMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	if err := m.fail("AddMessage"); err != nil {
		return message.Message{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *Memory) ListMessages(ctx context.Context, userID string) ([]message.Message, error) {
	if err := m.fail("ListMessages"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]message.Message, 0)
	for _, msg := range m.messages {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	sortMessages(out)
	return out, nil
}

func (m *Memory) ListAllMessages(ctx context.Context) ([]message.Message, error) {
	if err := m.fail("ListAllMessages"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]message.Message(nil), m.messages...)
	sortMessages(out)
	return out, nil
}

func (m *Memory) MarkMessagesRead(ctx context.Context, userID string, sender message.Sender) (int, error) {
	if err := m.fail("MarkMessagesRead"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for i := range m.messages {
		msg := &m.messages[i]
		if msg.UserID == userID && msg.Sender == sender && !msg.Read {
			msg.Read = true
			n++
		}
	}
	return n, nil
}

func (m *Memory) ListProducts(ctx context.Context, activeOnly bool) ([]product.Product, error) {
	if err := m.fail("ListProducts"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]product.Product, 0, len(m.products))
	for _, p := range m.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) GetProduct(ctx context.Context, id string) (product.Product, error) {
	if err := m.fail("GetProduct"); err != nil {
		return product.Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return product.Product{}, apperr.NotFound("GetProduct", "product %s not found", id)
	}
	return p, nil
}

func (m *Memory) SaveProduct(ctx context.Context, p product.Product) (product.Product, error) {
	if err := m.fail("SaveProduct"); err != nil {
		return product.Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *Memory) DeleteProduct(ctx context.Context, id string) error {
	if err := m.fail("DeleteProduct"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return apperr.NotFound("DeleteProduct", "product %s not found", id)
	}
	delete(m.products, id)
	return nil
}

func copyProfile(p profile.UserProfile) profile.UserProfile {
	p.CompletedDays = append([]int{}, p.CompletedDays...)
	p.DeviceTokens = append([]string(nil), p.DeviceTokens...)
	return p
}

func sortMessages(msgs []message.Message) {
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
}

func (m *Memory) Ping(ctx context.Context) error {
	return m.fail("Ping")
}
