package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/policy"
	"github.com/yeremiapane/restaurant-pos/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for an unknown user, a wrong password or a
// deactivated account alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

const minPasswordLength = 6

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, utils.WrapDBError(err, "user")
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, utils.WrapDBError(err, "user")
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, utils.WrapDBError(err, "users")
	}
	return users, nil
}

type CreateUserInput struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	role, ok := policy.ParseRole(in.Role)
	if !ok {
		return nil, utils.NewValidationError("unknown role %q", in.Role)
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, utils.NewValidationError("username is required")
	}
	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Name:     strings.TrimSpace(in.Name),
		Password: hashed,
		Role:     role,
		Active:   true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, utils.WrapDBError(err, "user "+username)
	}
	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Username, user.Role)
	return &user, nil
}

type UpdateUserInput struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
}

func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		role, ok := policy.ParseRole(*in.Role)
		if !ok {
			return nil, utils.NewValidationError("unknown role %q", *in.Role)
		}
		user.Role = role
	}
	if in.Password != nil {
		hashed, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if in.Active != nil {
		user.Active = *in.Active
	}
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, utils.WrapDBError(err, "user")
	}
	return user, nil
}

// EnsureAdmin seeds an admin account when the users table is empty.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return utils.WrapDBError(err, "users")
	}
	if count > 0 {
		return nil
	}
	_, err := s.Create(ctx, CreateUserInput{
		Username: username,
		Name:     "Administrator",
		Password: password,
		Role:     string(policy.RoleAdmin),
	})
	return err
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", utils.NewValidationError("password must be at least %d characters", minPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", &utils.AppError{Kind: utils.KindInternal, Message: "failed to hash password", Err: err}
	}
	return string(hashed), nil
}
