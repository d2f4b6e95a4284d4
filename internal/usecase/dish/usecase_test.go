package dish

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "menu-service/internal/domain/dish"
	pkgerrors "menu-service/pkg/errors"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]domain.Dish, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Dish), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*domain.Dish, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dish), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, d *domain.Dish) (*domain.Dish, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dish), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, d *domain.Dish) (*domain.Dish, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dish), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (*domain.Dish, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dish), args.Error(1)
}

func setupTestService(t *testing.T) (*Service, *MockRepository) {
	repo := new(MockRepository)
	t.Cleanup(func() { repo.AssertExpectations(t) })
	return New(repo, zaptest.NewLogger(t)), repo
}

func TestCreateDish_Success(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("Create", ctx, &domain.Dish{Nombre: "Taco", Descripcion: "al pastor", Precio: 3.5, Img: "t.png"}).
		Return(&domain.Dish{ID: 1, Nombre: "Taco", Descripcion: "al pastor", Precio: 3.5, Img: "t.png"}, nil)

	got, err := svc.CreateDish(ctx, CreateDishRequest{Nombre: "Taco", Descripcion: "al pastor", Precio: 3.5, Img: "t.png"})

	require.NoError(t, err)
	assert.Equal(t, &Dish{ID: 1, Nombre: "Taco", Descripcion: "al pastor", Precio: 3.5, Img: "t.png"}, got)
}

func TestCreateDish_ZeroPriceAllowed(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(&domain.Dish{ID: 2, Nombre: "Agua"}, nil)

	got, err := svc.CreateDish(ctx, CreateDishRequest{Nombre: "Agua"})

	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ID)
}

func TestCreateDish_Validation(t *testing.T) {
	tests := []struct {
		name    string
		in      CreateDishRequest
		wantMsg string
	}{
		{
			name:    "missing nombre",
			in:      CreateDishRequest{Precio: 1},
			wantMsg: "El nombre es obligatorio",
		},
		{
			name:    "negative precio",
			in:      CreateDishRequest{Nombre: "Taco", Precio: -1},
			wantMsg: "El precio debe ser mayor o igual a 0",
		},
		{
			name:    "precio out of range",
			in:      CreateDishRequest{Nombre: "Taco", Precio: 1e9},
			wantMsg: "El precio excede el máximo permitido",
		},
		{
			name:    "NaN precio",
			in:      CreateDishRequest{Nombre: "Taco", Precio: math.NaN()},
			wantMsg: "El precio debe ser un número válido",
		},
		{
			name:    "nombre too long",
			in:      CreateDishRequest{Nombre: strings.Repeat("a", 256)},
			wantMsg: "Nombre excede la longitud máxima de 255",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupTestService(t)

			got, err := svc.CreateDish(context.Background(), tt.in)

			assert.Nil(t, got)
			var verr *pkgerrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMsg, verr.Message)
		})
	}
}

func TestUpdateDish_FullReplace(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	want := &domain.Dish{ID: 5, Nombre: "Sopa", Descripcion: "", Precio: 0, Img: ""}
	repo.On("Update", ctx, want).Return(want, nil)

	got, err := svc.UpdateDish(ctx, UpdateDishRequest{ID: 5, Nombre: "Sopa"})

	require.NoError(t, err)
	assert.Equal(t, &Dish{ID: 5, Nombre: "Sopa"}, got)
}

func TestUpdateDish_NotFound(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("Update", ctx, mock.Anything).Return(nil, pkgerrors.ErrDishNotFound)

	_, err := svc.UpdateDish(ctx, UpdateDishRequest{ID: 999, Nombre: "Sopa"})
	assert.ErrorIs(t, err, pkgerrors.ErrDishNotFound)

	_, err = svc.UpdateDish(ctx, UpdateDishRequest{ID: -1, Nombre: "Sopa"})
	assert.ErrorIs(t, err, pkgerrors.ErrDishNotFound)
}

func TestUpdateDish_Validation(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.UpdateDish(context.Background(), UpdateDishRequest{ID: 1, Nombre: "Sopa", Precio: -2})

	var verr *pkgerrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestListDishes(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("List", ctx).Return([]domain.Dish{{ID: 1, Nombre: "Taco", Precio: 3.5}}, nil)

	got, err := svc.ListDishes(ctx)

	require.NoError(t, err)
	assert.Equal(t, []Dish{{ID: 1, Nombre: "Taco", Precio: 3.5}}, got)
}

func TestGetDish(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(1)).Return(&domain.Dish{ID: 1, Nombre: "Taco"}, nil)
	repo.On("GetByID", ctx, int64(999)).Return(nil, pkgerrors.ErrDishNotFound)

	got, err := svc.GetDish(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Taco", got.Nombre)

	_, err = svc.GetDish(ctx, 999)
	assert.ErrorIs(t, err, pkgerrors.ErrDishNotFound)
}

func TestDeleteDish(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	repo.On("Delete", ctx, int64(1)).Return(&domain.Dish{ID: 1, Nombre: "Taco"}, nil)
	repo.On("Delete", ctx, int64(999)).Return(nil, pkgerrors.ErrDishNotFound)

	got, err := svc.DeleteDish(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	_, err = svc.DeleteDish(ctx, 999)
	assert.ErrorIs(t, err, pkgerrors.ErrDishNotFound)

	_, err = svc.DeleteDish(ctx, 0)
	assert.ErrorIs(t, err, pkgerrors.ErrDishNotFound)
}
