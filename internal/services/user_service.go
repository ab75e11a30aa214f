package services

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/dto"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/models"
	"gorm.io/gorm"
)

type UserService struct {
	db       *gorm.DB
	lists    *Lists
	pageSize int
}

func NewUserService(db *gorm.DB, lists *Lists, pageSize int) *UserService {
	return &UserService{db: db, lists: lists, pageSize: pageSize}
}

func (s *UserService) List(ctx context.Context, viewerID uint, page, limit int) (*dto.Page[dto.UserResponse], error) {
	if limit < 1 {
		limit = s.pageSize
	}
	page, limit = normalizePage(page, limit)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, err
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Scopes(Paginate(page, limit)).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := s.lists.Follows.Members(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	results := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		results = append(results, toUserResponse(&users[i], subscribed[users[i].ID]))
	}
	return &dto.Page[dto.UserResponse]{Count: count, Page: page, Limit: limit, Results: results}, nil
}

func (s *UserService) Get(ctx context.Context, viewerID, userID uint) (*dto.UserResponse, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	subscribed := false
	if viewerID != 0 {
		if subscribed, err = s.lists.Follows.Contains(ctx, viewerID, userID); err != nil {
			return nil, err
		}
	}
	out := toUserResponse(user, subscribed)
	return &out, nil
}

func (s *UserService) Me(ctx context.Context, userID uint) (*dto.MeResponse, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.MeResponse{UserResponse: toUserResponse(user, false), Role: string(user.Role)}, nil
}

// Subscribe follows authorID and returns the author with a recipe preview.
// A negative recipesLimit leaves the preview uncapped.
func (s *UserService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*dto.SubscriptionResponse, error) {
	if err := s.lists.Follows.Add(ctx, userID, authorID); err != nil {
		return nil, err
	}
	author, err := s.find(ctx, authorID)
	if err != nil {
		return nil, err
	}
	out, err := s.subscriptions(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	return s.lists.Follows.Remove(ctx, userID, authorID)
}

// Subscriptions lists the authors userID follows, most recent first.
func (s *UserService) Subscriptions(ctx context.Context, userID uint, page, limit, recipesLimit int) (*dto.Page[dto.SubscriptionResponse], error) {
	if limit < 1 {
		limit = s.pageSize
	}
	page, limit = normalizePage(page, limit)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Subscribe{}).Scopes(ForUser(userID)).Count(&count).Error; err != nil {
		return nil, err
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN subscribes ON subscribes.author_id = users.id").
		Where("subscribes.user_id = ?", userID).
		Order("subscribes.id DESC").
		Scopes(Paginate(page, limit)).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	results, err := s.subscriptions(ctx, users, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &dto.Page[dto.SubscriptionResponse]{Count: count, Page: page, Limit: limit, Results: results}, nil
}

// subscriptions renders followed authors; the viewer is subscribed to all of them.
func (s *UserService) subscriptions(ctx context.Context, authors []models.User, recipesLimit int) ([]dto.SubscriptionResponse, error) {
	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}

	type authorCount struct {
		AuthorID uint
		Total    int64
	}
	var counts []authorCount
	if len(ids) > 0 {
		err := s.db.WithContext(ctx).Model(&models.Recipe{}).
			Select("author_id, COUNT(*) AS total").
			Where("author_id IN ?", ids).
			Group("author_id").
			Scan(&counts).Error
		if err != nil {
			return nil, err
		}
	}
	totals := make(map[uint]int64, len(counts))
	for _, c := range counts {
		totals[c.AuthorID] = c.Total
	}

	out := make([]dto.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		q := s.db.WithContext(ctx).Where("author_id = ?", authors[i].ID).Order("pub_date DESC, id DESC")
		if recipesLimit >= 0 {
			q = q.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if recipesLimit != 0 {
			if err := q.Find(&recipes).Error; err != nil {
				return nil, err
			}
		}
		preview := make([]dto.RecipeShortResponse, 0, len(recipes))
		for j := range recipes {
			preview = append(preview, toRecipeShort(&recipes[j]))
		}
		out = append(out, dto.SubscriptionResponse{
			UserResponse: toUserResponse(&authors[i], true),
			Recipes:      preview,
			RecipesCount: totals[authors[i].ID],
		})
	}
	return out, nil
}

func (s *UserService) find(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
