package services

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/validation"
)

// Error kinds. Every error returned by this package wraps exactly one of them.
var (
	ErrValidation       = validation.ErrInvalid
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrPermissionDenied = errors.New("permission denied")
)

// Error is a domain failure with a machine-readable code for clients.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// ErrNotInList is the membership flavour of ErrNotFound: the target exists but
// is not part of the user's list.
var ErrNotInList = newError(ErrNotFound, "not_in_list", "not in list")

var (
	ErrRecipeNotFound     = newError(ErrNotFound, "recipe_not_found", "recipe not found")
	ErrUserNotFound       = newError(ErrNotFound, "user_not_found", "user not found")
	ErrTagNotFound        = newError(ErrNotFound, "tag_not_found", "tag not found")
	ErrIngredientNotFound = newError(ErrNotFound, "ingredient_not_found", "ingredient not found")

	ErrAlreadyFavorited  = newError(ErrConflict, "already_favorited", "recipe is already in favorites")
	ErrNotFavorited      = newError(ErrNotInList, "not_favorited", "recipe is not in favorites")
	ErrAlreadyInCart     = newError(ErrConflict, "already_in_cart", "recipe is already in the shopping cart")
	ErrNotInCart         = newError(ErrNotInList, "not_in_cart", "recipe is not in the shopping cart")
	ErrAlreadySubscribed = newError(ErrConflict, "already_subscribed", "you are already subscribed to this user")
	ErrNotSubscribed     = newError(ErrNotInList, "not_subscribed", "you are not subscribed to this user")
	ErrSelfSubscription  = newError(ErrInvalidOperation, "self_subscription", "you cannot subscribe to yourself")

	ErrEmailTaken      = newError(ErrConflict, "email_taken", "email already registered")
	ErrUsernameTaken   = newError(ErrConflict, "username_taken", "username already taken")
	ErrRecipeNameTaken = newError(ErrConflict, "recipe_name_taken", "a recipe with this name already exists")
	ErrTagTaken        = newError(ErrConflict, "tag_taken", "a tag with this name, color or slug already exists")

	ErrInvalidCredentials = newError(ErrPermissionDenied, "invalid_credentials", "invalid email or password")
	ErrInvalidToken       = newError(ErrPermissionDenied, "invalid_token", "invalid or expired refresh token")
	ErrNotOwner           = newError(ErrPermissionDenied, "not_owner", "only the author can change this resource")
)

// CodeOf returns the client-facing code for err.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		return "validation_error"
	}
	return "internal_error"
}
