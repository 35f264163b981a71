package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/types/daycontent"
	"akneDenikAPI/internal/types/message"
	"akneDenikAPI/internal/types/product"
	"akneDenikAPI/internal/types/profile"
	"akneDenikAPI/internal/types/subscription"
	"akneDenikAPI/internal/types/userlog"
)

type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

type dayContentDoc struct {
	Day            int        `firestore:"day"`
	Motivation     string     `firestore:"motivation"`
	Task           string     `firestore:"task"`
	IsPhotoDay     bool       `firestore:"isPhotoDay"`
	IsDualPhotoDay bool       `firestore:"isDualPhotoDay"`
	UpdatedAt      *time.Time `firestore:"updatedAt"`
	UpdatedBy      string     `firestore:"updatedBy"`
}

type photoDoc struct {
	URL  string `firestore:"url"`
	Type string `firestore:"type"`
}

type userLogDoc struct {
	UserID     string     `firestore:"userId"`
	Day        int        `firestore:"day"`
	Mood       int        `firestore:"mood"`
	SkinRating int        `firestore:"skinRating"`
	Note       string     `firestore:"note"`
	Photos     []photoDoc `firestore:"photos"`
	CreatedAt  time.Time  `firestore:"createdAt"`
	UpdatedAt  time.Time  `firestore:"updatedAt"`
}

// userDoc holds only the fields this service owns; other profile fields written by the app are
// left alone and ignored on decode.
type userDoc struct {
	CurrentDay         int        `firestore:"currentDay"`
	CompletedDays      []int      `firestore:"completedDays"`
	LastActivity       *time.Time `firestore:"lastActivity"`
	SubscriptionStatus string     `firestore:"subscriptionStatus"`
	SubscriptionType   string     `firestore:"subscriptionType"`
	SubscriptionStart  *time.Time `firestore:"subscriptionStartDate"`
	SubscriptionEnd    *time.Time `firestore:"subscriptionEndDate"`
	FCMTokens          []string   `firestore:"fcmTokens"`
}

type messageDoc struct {
	UserID    string    `firestore:"userId"`
	Sender    string    `firestore:"sender"`
	AuthorID  string    `firestore:"authorId"`
	Text      string    `firestore:"text"`
	Read      bool      `firestore:"read"`
	CreatedAt time.Time `firestore:"createdAt"`
}

type productDoc struct {
	Name        string    `firestore:"name"`
	Description string    `firestore:"description"`
	PriceCZK    int       `firestore:"priceCzk"`
	ImageURL    string    `firestore:"imageUrl"`
	URL         string    `firestore:"url"`
	Active      bool      `firestore:"active"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

// classify turns a Firestore failure into the apperr taxonomy. Errors already classified, such
// as validation failures raised inside a transaction, pass through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	switch status.Code(err) {
	case codes.NotFound:
		return apperr.NotFound(op, "document not found")
	case codes.InvalidArgument, codes.FailedPrecondition, codes.AlreadyExists, codes.PermissionDenied:
		return fmt.Errorf("%s: %w", op, err)
	}
	return apperr.Unavailable(op, err)
}

func (f *Firestore) GetDayContent(ctx context.Context, day int) (daycontent.DayContent, error) {
	snap, err := f.client.Collection(collectionDailyContent).Doc(dayContentID(day)).Get(ctx)
	if err != nil {
		return daycontent.DayContent{}, classify("dailyContent get", err)
	}
	return decodeDayContent(day, snap)
}

func decodeDayContent(day int, snap *firestore.DocumentSnapshot) (daycontent.DayContent, error) {
	var doc dayContentDoc
	if err := snap.DataTo(&doc); err != nil {
		return daycontent.DayContent{}, apperr.Malformed(collectionDailyContent+"/"+snap.Ref.ID, "%v", err)
	}
	return checkDayContent(day, daycontent.DayContent{
		Day:            doc.Day,
		Motivation:     doc.Motivation,
		Task:           doc.Task,
		IsPhotoDay:     doc.IsPhotoDay,
		IsDualPhotoDay: doc.IsDualPhotoDay,
		UpdatedAt:      doc.UpdatedAt,
		UpdatedBy:      doc.UpdatedBy,
	})
}

func (f *Firestore) PutDayContent(ctx context.Context, c daycontent.DayContent) error {
	doc := dayContentDoc{
		Day:            c.Day,
		Motivation:     c.Motivation,
		Task:           c.Task,
		IsPhotoDay:     c.IsPhotoDay,
		IsDualPhotoDay: c.IsDualPhotoDay,
		UpdatedAt:      c.UpdatedAt,
		UpdatedBy:      c.UpdatedBy,
	}
	_, err := f.client.Collection(collectionDailyContent).Doc(dayContentID(c.Day)).Set(ctx, doc)
	return classify("dailyContent set", err)
}

func (f *Firestore) DeleteDayContent(ctx context.Context, day int) error {
	_, err := f.client.Collection(collectionDailyContent).Doc(dayContentID(day)).Delete(ctx)
	return classify("dailyContent delete", err)
}

// ListDayContent skips malformed documents so one bad record does not hide the rest.
func (f *Firestore) ListDayContent(ctx context.Context) ([]daycontent.DayContent, error) {
	iter := f.client.Collection(collectionDailyContent).Documents(ctx)
	defer iter.Stop()

	out := make([]daycontent.DayContent, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, classify("dailyContent list", err)
		}
		var day int
		if _, err := fmt.Sscanf(snap.Ref.ID, "day-%d", &day); err != nil {
			continue
		}
		c, err := decodeDayContent(day, snap)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func decodeUserLog(snap *firestore.DocumentSnapshot) (userlog.UserLog, error) {
	var doc userLogDoc
	if err := snap.DataTo(&doc); err != nil {
		return userlog.UserLog{}, apperr.Malformed(collectionUserLogs+"/"+snap.Ref.ID, "%v", err)
	}
	photos := make([]userlog.Photo, len(doc.Photos))
	for i, p := range doc.Photos {
		photos[i] = userlog.Photo{URL: p.URL, Type: userlog.PhotoType(p.Type)}
	}
	return checkUserLog(snap.Ref.ID, userlog.UserLog{
		UserID:     doc.UserID,
		Day:        doc.Day,
		Mood:       doc.Mood,
		SkinRating: doc.SkinRating,
		Note:       doc.Note,
		Photos:     photos,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	})
}

func encodeUserLog(l userlog.UserLog) userLogDoc {
	photos := make([]photoDoc, len(l.Photos))
	for i, p := range l.Photos {
		photos[i] = photoDoc{URL: p.URL, Type: string(p.Type)}
	}
	return userLogDoc{
		UserID:     l.UserID,
		Day:        l.Day,
		Mood:       l.Mood,
		SkinRating: l.SkinRating,
		Note:       l.Note,
		Photos:     photos,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func decodeProfile(userID string, snap *firestore.DocumentSnapshot) (profile.UserProfile, error) {
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return profile.UserProfile{}, apperr.Malformed(collectionUsers+"/"+userID, "%v", err)
	}
	return checkProfile(profile.UserProfile{
		UserID:        userID,
		CurrentDay:    doc.CurrentDay,
		CompletedDays: doc.CompletedDays,
		LastActivity:  doc.LastActivity,
		Subscription: subscription.Subscription{
			Status: doc.SubscriptionStatus,
			Type:   doc.SubscriptionType,
			Start:  doc.SubscriptionStart,
			End:    doc.SubscriptionEnd,
		},
		DeviceTokens: doc.FCMTokens,
	}), nil
}

func (f *Firestore) GetProfile(ctx context.Context, userID string) (profile.UserProfile, error) {
	snap, err := f.client.Collection(collectionUsers).Doc(userID).Get(ctx)
	if err != nil {
		return profile.UserProfile{}, classify("users get", err)
	}
	return decodeProfile(userID, snap)
}

// logsQuery picks the newest log when legacy duplicates exist, like the Postgres backend. It needs
// the composite index userId ASC, day ASC, updatedAt DESC.
func (f *Firestore) logsQuery(userID string, day int) firestore.Query {
	return f.client.Collection(collectionUserLogs).
		Where("userId", "==", userID).
		Where("day", "==", day).
		OrderBy("updatedAt", firestore.Desc).
		Limit(1)
}

func (f *Firestore) FindLog(ctx context.Context, userID string, day int) (userlog.UserLog, error) {
	docs, err := f.logsQuery(userID, day).Documents(ctx).GetAll()
	if err != nil {
		return userlog.UserLog{}, classify("userLogs find", err)
	}
	if len(docs) == 0 {
		return userlog.UserLog{}, apperr.NotFound("userLogs find", "no log for day %d", day)
	}
	return decodeUserLog(docs[0])
}

func (f *Firestore) ListLogs(ctx context.Context, userID string) ([]userlog.UserLog, error) {
	iter := f.client.Collection(collectionUserLogs).Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	out := make([]userlog.UserLog, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, classify("userLogs list", err)
		}
		l, err := decodeUserLog(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

// CommitDay reads the profile and the (userId, day) log and writes both back inside one
// transaction, so a retry after a partial failure converges on the same state.
func (f *Firestore) CommitDay(ctx context.Context, userID string, day int, commit func(profile.UserProfile, *userlog.UserLog) (profile.UserProfile, userlog.UserLog, error)) (profile.UserProfile, userlog.UserLog, error) {
	userRef := f.client.Collection(collectionUsers).Doc(userID)

	var outProfile profile.UserProfile
	var outLog userlog.UserLog
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		current := profile.New(userID)
		snap, err := tx.Get(userRef)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return err
		default:
			if current, err = decodeProfile(userID, snap); err != nil {
				return err
			}
		}

		docs, err := tx.Documents(f.logsQuery(userID, day)).GetAll()
		if err != nil {
			return err
		}
		logRef := f.client.Collection(collectionUserLogs).NewDoc()
		var existing *userlog.UserLog
		if len(docs) > 0 {
			l, err := decodeUserLog(docs[0])
			if err != nil {
				return err
			}
			existing = &l
			logRef = docs[0].Ref
		}

		next, log, err := commit(current, existing)
		if err != nil {
			return err
		}
		log.ID = logRef.ID

		if err := tx.Set(logRef, encodeUserLog(log)); err != nil {
			return err
		}
		if err := tx.Set(userRef, map[string]interface{}{
			"currentDay":    next.CurrentDay,
			"completedDays": next.CompletedDays,
			"lastActivity":  next.LastActivity,
		}, firestore.MergeAll); err != nil {
			return err
		}
		outProfile, outLog = next, log
		return nil
	})
	if err != nil {
		return profile.UserProfile{}, userlog.UserLog{}, classify("completeDay transaction", err)
	}
	return outProfile, outLog, nil
}

func (f *Firestore) SetSubscription(ctx context.Context, userID string, sub subscription.Subscription) error {
	_, err := f.client.Collection(collectionUsers).Doc(userID).Set(ctx, map[string]interface{}{
		"subscriptionStatus":    sub.Status,
		"subscriptionType":      sub.Type,
		"subscriptionStartDate": sub.Start,
		"subscriptionEndDate":   sub.End,
	}, firestore.MergeAll)
	return classify("users set subscription", err)
}

func (f *Firestore) AddDeviceToken(ctx context.Context, userID, token string) error {
	_, err := f.client.Collection(collectionUsers).Doc(userID).Set(ctx, map[string]interface{}{
		"fcmTokens": firestore.ArrayUnion(token),
	}, firestore.MergeAll)
	return classify("users add device token", err)
}

func decodeMessage(snap *firestore.DocumentSnapshot) (message.Message, error) {
	var doc messageDoc
	if err := snap.DataTo(&doc); err != nil {
		return message.Message{}, apperr.Malformed(collectionMessages+"/"+snap.Ref.ID, "%v", err)
	}
	return message.Message{
		ID:        snap.Ref.ID,
		UserID:    doc.UserID,
		Sender:    message.Sender(doc.Sender),
		AuthorID:  doc.AuthorID,
		Text:      doc.Text,
		Read:      doc.Read,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (f *Firestore) AddMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	ref, _, err := f.client.Collection(collectionMessages).Add(ctx, messageDoc{
		UserID:    msg.UserID,
		Sender:    string(msg.Sender),
		AuthorID:  msg.AuthorID,
		Text:      msg.Text,
		Read:      msg.Read,
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		return message.Message{}, classify("messages add", err)
	}
	msg.ID = ref.ID
	return msg, nil
}

func (f *Firestore) listMessages(ctx context.Context, op string, q firestore.Query) ([]message.Message, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	out := make([]message.Message, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, classify(op, err)
		}
		msg, err := decodeMessage(snap)
		if err != nil {
			continue
		}
		out = append(out, msg)
	}
	sortMessages(out)
	return out, nil
}

func (f *Firestore) ListMessages(ctx context.Context, userID string) ([]message.Message, error) {
	return f.listMessages(ctx, "messages list", f.client.Collection(collectionMessages).Where("userId", "==", userID))
}

func (f *Firestore) ListAllMessages(ctx context.Context) ([]message.Message, error) {
	return f.listMessages(ctx, "messages list all", f.client.Collection(collectionMessages).Query)
}

func (f *Firestore) MarkMessagesRead(ctx context.Context, userID string, sender message.Sender) (int, error) {
	docs, err := f.client.Collection(collectionMessages).
		Where("userId", "==", userID).
		Where("sender", "==", string(sender)).
		Where("read", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, classify("messages mark read", err)
	}
	for i, snap := range docs {
		if _, err := snap.Ref.Update(ctx, []firestore.Update{{Path: "read", Value: true}}); err != nil {
			return i, classify("messages mark read", err)
		}
	}
	return len(docs), nil
}

func decodeProduct(snap *firestore.DocumentSnapshot) (product.Product, error) {
	var doc productDoc
	if err := snap.DataTo(&doc); err != nil {
		return product.Product{}, apperr.Malformed(collectionProducts+"/"+snap.Ref.ID, "%v", err)
	}
	return product.Product{
		ID:          snap.Ref.ID,
		Name:        doc.Name,
		Description: doc.Description,
		PriceCZK:    doc.PriceCZK,
		ImageURL:    doc.ImageURL,
		URL:         doc.URL,
		Active:      doc.Active,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

func (f *Firestore) ListProducts(ctx context.Context, activeOnly bool) ([]product.Product, error) {
	iter := f.client.Collection(collectionProducts).Documents(ctx)
	defer iter.Stop()

	out := make([]product.Product, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, classify("products list", err)
		}
		p, err := decodeProduct(snap)
		if err != nil || (activeOnly && !p.Active) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *Firestore) GetProduct(ctx context.Context, id string) (product.Product, error) {
	snap, err := f.client.Collection(collectionProducts).Doc(id).Get(ctx)
	if err != nil {
		return product.Product{}, classify("products get", err)
	}
	return decodeProduct(snap)
}

func (f *Firestore) SaveProduct(ctx context.Context, p product.Product) (product.Product, error) {
	ref := f.client.Collection(collectionProducts).NewDoc()
	if p.ID != "" {
		ref = f.client.Collection(collectionProducts).Doc(p.ID)
	}
	_, err := ref.Set(ctx, productDoc{
		Name:        p.Name,
		Description: p.Description,
		PriceCZK:    p.PriceCZK,
		ImageURL:    p.ImageURL,
		URL:         p.URL,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
	if err != nil {
		return product.Product{}, classify("products set", err)
	}
	p.ID = ref.ID
	return p, nil
}

func (f *Firestore) DeleteProduct(ctx context.Context, id string) error {
	_, err := f.client.Collection(collectionProducts).Doc(id).Delete(ctx, firestore.Exists)
	return classify("products delete", err)
}

// Ping runs the cheapest possible read to prove the project is reachable.
func (f *Firestore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err := f.client.Collection(collectionDailyContent).Limit(1).Documents(ctx).GetAll()
	return classify("firestore ping", err)
}
