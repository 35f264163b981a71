package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/types/daycontent"
	"akneDenikAPI/internal/types/message"
	"akneDenikAPI/internal/types/product"
	"akneDenikAPI/internal/types/profile"
	"akneDenikAPI/internal/types/subscription"
	"akneDenikAPI/internal/types/userlog"
)

//go:embed schema.sql
var schemaSQL string

type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates missing tables. It is safe to run on every start.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func classifyPg(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(op, "row not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return apperr.Unavailable(op, err)
}

func (s *Postgres) GetDayContent(ctx context.Context, day int) (daycontent.DayContent, error) {
	query := `
	SELECT day, motivation, task, is_photo_day, is_dual_photo_day, updated_at, updated_by
	FROM daily_content
	WHERE day = $1
	`
	var c daycontent.DayContent
	err := s.db.QueryRow(ctx, query, day).Scan(
		&c.Day,
		&c.Motivation,
		&c.Task,
		&c.IsPhotoDay,
		&c.IsDualPhotoDay,
		&c.UpdatedAt,
		&c.UpdatedBy,
	)
	if err != nil {
		return daycontent.DayContent{}, classifyPg("daily_content get", err)
	}
	return checkDayContent(day, c)
}

func (s *Postgres) PutDayContent(ctx context.Context, c daycontent.DayContent) error {
	query := `
	INSERT INTO daily_content (day, motivation, task, is_photo_day, is_dual_photo_day, updated_at, updated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (day) DO UPDATE SET
		motivation = EXCLUDED.motivation,
		task = EXCLUDED.task,
		is_photo_day = EXCLUDED.is_photo_day,
		is_dual_photo_day = EXCLUDED.is_dual_photo_day,
		updated_at = EXCLUDED.updated_at,
		updated_by = EXCLUDED.updated_by
	`
	_, err := s.db.Exec(ctx, query, c.Day, c.Motivation, c.Task, c.IsPhotoDay, c.IsDualPhotoDay, c.UpdatedAt, c.UpdatedBy)
	return classifyPg("daily_content upsert", err)
}

func (s *Postgres) DeleteDayContent(ctx context.Context, day int) error {
	_, err := s.db.Exec(ctx, `DELETE FROM daily_content WHERE day = $1`, day)
	return classifyPg("daily_content delete", err)
}

func (s *Postgres) ListDayContent(ctx context.Context) ([]daycontent.DayContent, error) {
	rows, err := s.db.Query(ctx, `
	SELECT day, motivation, task, is_photo_day, is_dual_photo_day, updated_at, updated_by
	FROM daily_content
	ORDER BY day
	`)
	if err != nil {
		return nil, classifyPg("daily_content list", err)
	}
	defer rows.Close()

	out := make([]daycontent.DayContent, 0)
	for rows.Next() {
		var c daycontent.DayContent
		if err := rows.Scan(&c.Day, &c.Motivation, &c.Task, &c.IsPhotoDay, &c.IsDualPhotoDay, &c.UpdatedAt, &c.UpdatedBy); err != nil {
			return nil, classifyPg("daily_content list", err)
		}
		if checked, err := checkDayContent(c.Day, c); err == nil {
			out = append(out, checked)
		}
	}
	return out, classifyPg("daily_content list", rows.Err())
}

const profileColumns = `id, current_day, completed_days, last_activity,
	subscription_status, subscription_type, subscription_start, subscription_end, fcm_tokens`

func scanProfile(row pgx.Row) (profile.UserProfile, error) {
	var p profile.UserProfile
	var days []int32
	err := row.Scan(
		&p.UserID,
		&p.CurrentDay,
		&days,
		&p.LastActivity,
		&p.Subscription.Status,
		&p.Subscription.Type,
		&p.Subscription.Start,
		&p.Subscription.End,
		&p.DeviceTokens,
	)
	if err != nil {
		return profile.UserProfile{}, err
	}
	p.CompletedDays = make([]int, len(days))
	for i, d := range days {
		p.CompletedDays[i] = int(d)
	}
	return checkProfile(p), nil
}

func (s *Postgres) GetProfile(ctx context.Context, userID string) (profile.UserProfile, error) {
	p, err := scanProfile(s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		return profile.UserProfile{}, classifyPg("users get", err)
	}
	return p, nil
}

const logColumns = `id, user_id, day, mood, skin_rating, note, photos, created_at, updated_at`

func scanUserLog(row pgx.Row) (userlog.UserLog, error) {
	var l userlog.UserLog
	var id uuid.UUID
	var photos []byte
	if err := row.Scan(&id, &l.UserID, &l.Day, &l.Mood, &l.SkinRating, &l.Note, &photos, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return userlog.UserLog{}, err
	}
	if err := json.Unmarshal(photos, &l.Photos); err != nil {
		return userlog.UserLog{}, apperr.Malformed("user_logs/"+id.String(), "photos: %v", err)
	}
	return checkUserLog(id.String(), l)
}

func (s *Postgres) FindLog(ctx context.Context, userID string, day int) (userlog.UserLog, error) {
	query := `SELECT ` + logColumns + ` FROM user_logs WHERE user_id = $1 AND day = $2 ORDER BY updated_at DESC LIMIT 1`
	l, err := scanUserLog(s.db.QueryRow(ctx, query, userID, day))
	if err != nil {
		return userlog.UserLog{}, classifyPg("user_logs find", err)
	}
	return l, nil
}

func (s *Postgres) ListLogs(ctx context.Context, userID string) ([]userlog.UserLog, error) {
	rows, err := s.db.Query(ctx, `SELECT `+logColumns+` FROM user_logs WHERE user_id = $1 ORDER BY day`, userID)
	if err != nil {
		return nil, classifyPg("user_logs list", err)
	}
	defer rows.Close()

	out := make([]userlog.UserLog, 0)
	for rows.Next() {
		l, err := scanUserLog(rows)
		if err != nil {
			return nil, classifyPg("user_logs list", err)
		}
		out = append(out, l)
	}
	return out, classifyPg("user_logs list", rows.Err())
}

// CommitDay locks the user row for the duration of the transaction; concurrent completions of
// the same user serialize there.
func (s *Postgres) CommitDay(ctx context.Context, userID string, day int, commit func(profile.UserProfile, *userlog.UserLog) (profile.UserProfile, userlog.UserLog, error)) (profile.UserProfile, userlog.UserLog, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return profile.UserProfile{}, userlog.UserLog{}, classifyPg("completeDay begin", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, userID); err != nil {
		return profile.UserProfile{}, userlog.UserLog{}, classifyPg("completeDay ensure user", err)
	}
	current, err := scanProfile(tx.QueryRow(ctx, `SELECT `+profileColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID))
	if err != nil {
		return profile.UserProfile{}, userlog.UserLog{}, classifyPg("completeDay lock user", err)
	}

	var existing *userlog.UserLog
	found, err := scanUserLog(tx.QueryRow(ctx,
		`SELECT `+logColumns+` FROM user_logs WHERE user_id = $1 AND day = $2 ORDER BY updated_at DESC LIMIT 1`,
		userID, day))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return profile.UserProfile{}, userlog.UserLog{}, classifyPg("completeDay find log", err)
	default:
		existing = &found
	}

	next, log, err := commit(current, existing)
	if err != nil {
		return profile.UserProfile{}, userlog.UserLog{}, err
	}

	photos, err := json.Marshal(nonNilPhotos(log.Photos))
	if err != nil {
		return profile.UserProfile{}, userlog.UserLog{}, fmt.Errorf("failed to encode photos: %w", err)
	}
	if existing != nil {
		log.ID = existing.ID
		_, err = tx.Exec(ctx, `
		UPDATE user_logs
		SET mood = $2, skin_rating = $3, note = $4, photos = $5, updated_at = $6
		WHERE id = $1
		`, log.ID, log.Mood, log.SkinRating, log.Note, photos, log.UpdatedAt)
	} else {
		log.ID = uuid.NewString()
		_, err = tx.Exec(ctx, `
		INSERT INTO user_logs (id, user_id, day, mood, skin_rating, note, photos, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, log.ID, log.UserID, log.Day, log.Mood, log.SkinRating, log.Note, photos, log.CreatedAt, log.UpdatedAt)
	}
	if err != nil {
		return profile.UserProfile{}, userlog.UserLog{}, classifyPg("completeDay write log", err)
	}

	days := make([]int32, len(next.CompletedDays))
	for i, d := range next.CompletedDays {
		days[i] = int32(d)
	}
	_, err = tx.Exec(ctx, `
	UPDATE users SET current_day = $2, completed_days = $3, last_activity = $4 WHERE id = $1
	`, userID, next.CurrentDay, days, next.LastActivity)
	if err != nil {
		return profile.UserProfile{}, userlog.UserLog{}, classifyPg("completeDay write profile", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return profile.UserProfile{}, userlog.UserLog{}, classifyPg("completeDay commit", err)
	}
	return next, log, nil
}

func nonNilPhotos(p []userlog.Photo) []userlog.Photo {
	if p == nil {
		return []userlog.Photo{}
	}
	return p
}

func (s *Postgres) SetSubscription(ctx context.Context, userID string, sub subscription.Subscription) error {
	query := `
	INSERT INTO users (id, subscription_status, subscription_type, subscription_start, subscription_end)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET
		subscription_status = EXCLUDED.subscription_status,
		subscription_type = EXCLUDED.subscription_type,
		subscription_start = EXCLUDED.subscription_start,
		subscription_end = EXCLUDED.subscription_end
	`
	_, err := s.db.Exec(ctx, query, userID, sub.Status, sub.Type, sub.Start, sub.End)
	return classifyPg("users set subscription", err)
}

func (s *Postgres) AddDeviceToken(ctx context.Context, userID, token string) error {
	query := `
	INSERT INTO users (id, fcm_tokens) VALUES ($1, ARRAY[$2::text])
	ON CONFLICT (id) DO UPDATE SET fcm_tokens = (
		SELECT ARRAY(SELECT DISTINCT unnest(users.fcm_tokens || EXCLUDED.fcm_tokens))
	)
	`
	_, err := s.db.Exec(ctx, query, userID, token)
	return classifyPg("users add device token", err)
}

func (s *Postgres) AddMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, `
	INSERT INTO messages (id, user_id, sender, author_id, text, read, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, msg.ID, msg.UserID, string(msg.Sender), msg.AuthorID, msg.Text, msg.Read, msg.CreatedAt)
	if err != nil {
		return message.Message{}, classifyPg("messages insert", err)
	}
	return msg, nil
}

func (s *Postgres) queryMessages(ctx context.Context, op, query string, args ...any) ([]message.Message, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyPg(op, err)
	}
	defer rows.Close()

	out := make([]message.Message, 0)
	for rows.Next() {
		var msg message.Message
		var id uuid.UUID
		var sender string
		if err := rows.Scan(&id, &msg.UserID, &sender, &msg.AuthorID, &msg.Text, &msg.Read, &msg.CreatedAt); err != nil {
			return nil, classifyPg(op, err)
		}
		msg.ID = id.String()
		msg.Sender = message.Sender(sender)
		out = append(out, msg)
	}
	return out, classifyPg(op, rows.Err())
}

func (s *Postgres) ListMessages(ctx context.Context, userID string) ([]message.Message, error) {
	return s.queryMessages(ctx, "messages list", `
	SELECT id, user_id, sender, author_id, text, read, created_at
	FROM messages WHERE user_id = $1 ORDER BY created_at
	`, userID)
}

func (s *Postgres) ListAllMessages(ctx context.Context) ([]message.Message, error) {
	return s.queryMessages(ctx, "messages list all", `
	SELECT id, user_id, sender, author_id, text, read, created_at
	FROM messages ORDER BY created_at
	`)
}

func (s *Postgres) MarkMessagesRead(ctx context.Context, userID string, sender message.Sender) (int, error) {
	tag, err := s.db.Exec(ctx, `
	UPDATE messages SET read = true WHERE user_id = $1 AND sender = $2 AND read = false
	`, userID, string(sender))
	if err != nil {
		return 0, classifyPg("messages mark read", err)
	}
	return int(tag.RowsAffected()), nil
}

const productColumns = `id, name, description, price_czk, image_url, url, active, created_at, updated_at`

func scanProduct(row pgx.Row) (product.Product, error) {
	var p product.Product
	var id uuid.UUID
	if err := row.Scan(&id, &p.Name, &p.Description, &p.PriceCZK, &p.ImageURL, &p.URL, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return product.Product{}, err
	}
	p.ID = id.String()
	return p, nil
}

func (s *Postgres) ListProducts(ctx context.Context, activeOnly bool) ([]product.Product, error) {
	rows, err := s.db.Query(ctx, `
	SELECT `+productColumns+` FROM products WHERE active OR NOT $1 ORDER BY created_at
	`, activeOnly)
	if err != nil {
		return nil, classifyPg("products list", err)
	}
	defer rows.Close()

	out := make([]product.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, classifyPg("products list", err)
		}
		out = append(out, p)
	}
	return out, classifyPg("products list", rows.Err())
}

func (s *Postgres) GetProduct(ctx context.Context, id string) (product.Product, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return product.Product{}, apperr.NotFound("products get", "product %s not found", id)
	}
	p, err := scanProduct(s.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, pid))
	if err != nil {
		return product.Product{}, classifyPg("products get", err)
	}
	return p, nil
}

func (s *Postgres) SaveProduct(ctx context.Context, p product.Product) (product.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	pid, err := uuid.Parse(p.ID)
	if err != nil {
		return product.Product{}, apperr.NotFound("products save", "product %s not found", p.ID)
	}
	_, err = s.db.Exec(ctx, `
	INSERT INTO products (`+productColumns+`)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		price_czk = EXCLUDED.price_czk,
		image_url = EXCLUDED.image_url,
		url = EXCLUDED.url,
		active = EXCLUDED.active,
		updated_at = EXCLUDED.updated_at
	`, pid, p.Name, p.Description, p.PriceCZK, p.ImageURL, p.URL, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return product.Product{}, classifyPg("products upsert", err)
	}
	return p, nil
}

func (s *Postgres) DeleteProduct(ctx context.Context, id string) error {
	pid, err := uuid.Parse(id)
	if err != nil {
		return apperr.NotFound("products delete", "product %s not found", id)
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, pid)
	if err != nil {
		return classifyPg("products delete", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("products delete", "product %s not found", id)
	}
	return nil
}

// Ping reports whether the pool can reach the database.
func (s *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.Ping(ctx)
}
