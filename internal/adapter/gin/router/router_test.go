package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"menu-service/internal/adapter/db/postgres"
	"menu-service/internal/adapter/db/provider"
	"menu-service/internal/adapter/gin/handler"
	"menu-service/internal/config"
	dishuc "menu-service/internal/usecase/dish"
	useruc "menu-service/internal/usecase/user"
	"menu-service/pkg/logger"
	"menu-service/pkg/security"
)

type RouterSuite struct {
	suite.Suite
	log    *zap.Logger
	db     *provider.Provider
	router *gin.Engine
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.log = zaptest.NewLogger(s.T())

	dir := s.T().TempDir()
	s.db = provider.New(
		config.DatabaseConfig{Name: filepath.Join(dir, "missing", "primary.db")},
		config.DatabaseConfig{Name: filepath.Join(dir, "local.db")},
		config.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1, ProbeTimeoutSeconds: 2},
		s.log,
		provider.WithDialector(func(cfg config.DatabaseConfig) gorm.Dialector { return sqlite.Open(cfg.Name) }),
		provider.WithGormLogger(gormlogger.Discard),
	)

	gdb, err := s.db.Connect(context.Background())
	s.Require().NoError(err)
	s.Require().NoError(postgres.Migrate(context.Background(), gdb))

	users := useruc.New(postgres.NewUserRepoPG(gdb, s.log), security.NewPasswordHasher(bcrypt.MinCost, true), s.log)
	dishes := dishuc.New(postgres.NewDishRepoPG(gdb, s.log), s.log)

	s.router = SetupRouter(Handlers{
		User:   handler.NewUserHandler(users, s.log),
		Dish:   handler.NewDishHandler(dishes, s.log),
		Health: handler.NewHealthHandler(s.db),
	}, nil, nil, s.log)
}

func (s *RouterSuite) TearDownTest() {
	s.NoError(s.db.Close())
}

func (s *RouterSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v))
}

func (s *RouterSuite) countUsers() int64 {
	var n int64
	s.Require().NoError(s.db.DB().Model(&postgres.UserSchema{}).Count(&n).Error)
	return n
}

func (s *RouterSuite) TestHealth_ReportsLocalFallback() {
	w := s.do(http.MethodGet, "/health", "")

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok","database":"ready","target":"local"}`, w.Body.String())
	s.NotEmpty(w.Header().Get(logger.RequestIDHeader))
}

func (s *RouterSuite) TestRegister_EmptyBody() {
	w := s.do(http.MethodPost, "/usuarios", `{}`)

	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"error":"Correo electrónico y contraseña son campos obligatorios"}`, w.Body.String())
	s.Zero(s.countUsers())
}

func (s *RouterSuite) TestRegister_Twice() {
	body := `{"email":"a@b.com","password":"secret"}`

	first := s.do(http.MethodPost, "/usuarios", body)
	s.Equal(http.StatusCreated, first.Code)
	s.NotContains(first.Body.String(), "secret")

	second := s.do(http.MethodPost, "/usuarios", body)
	s.Equal(http.StatusBadRequest, second.Code)
	s.JSONEq(`{"error":"El usuario ya está registrado"}`, second.Body.String())

	s.Equal(int64(1), s.countUsers())
}

func (s *RouterSuite) TestRegisterThenLogin() {
	created := s.do(http.MethodPost, "/usuarios", `{"email":"a@b.com","password":"secret"}`)
	s.Require().Equal(http.StatusCreated, created.Code)

	var u handler.UserResponse
	s.decode(created, &u)

	var stored postgres.UserSchema
	s.Require().NoError(s.db.DB().First(&stored, u.ID).Error)
	s.True(security.IsHash(stored.Password), "password must be stored hashed")

	ok := s.do(http.MethodPost, "/usuarios/login", `{"email":"a@b.com","password":"secret"}`)
	s.Equal(http.StatusOK, ok.Code)
	var login handler.LoginResponse
	s.decode(ok, &login)
	s.Equal("Autenticación exitosa", login.Message)
	s.Equal(u, login.Usuario)

	wrong := s.do(http.MethodPost, "/usuarios/login", `{"email":"a@b.com","password":"nope"}`)
	unknown := s.do(http.MethodPost, "/usuarios/login", `{"email":"x@b.com","password":"secret"}`)

	s.Equal(http.StatusUnauthorized, wrong.Code)
	s.Equal(http.StatusUnauthorized, unknown.Code)
	s.Equal(wrong.Body.String(), unknown.Body.String())
	s.JSONEq(`{"error":"Credenciales inválidas"}`, wrong.Body.String())
}

func (s *RouterSuite) TestRegister_PlainUsernameEmail() {
	w := s.do(http.MethodPost, "/usuarios", `{"email":"usuario1","password":"x"}`)
	s.Equal(http.StatusCreated, w.Code)

	ok := s.do(http.MethodPost, "/usuarios/login", `{"email":"usuario1","password":"x"}`)
	s.Equal(http.StatusOK, ok.Code)
}

func (s *RouterSuite) TestLogin_MissingFieldsIsUnauthorized() {
	s.do(http.MethodPost, "/usuarios", `{"email":"a@b.com","password":"secret"}`)

	for _, body := range []string{
		`{}`,
		`{"email":"a@b.com"}`,
		`{"email":"","password":"secret"}`,
	} {
		w := s.do(http.MethodPost, "/usuarios/login", body)
		s.Equal(http.StatusUnauthorized, w.Code, body)
		s.JSONEq(`{"error":"Credenciales inválidas"}`, w.Body.String(), body)
	}
}

func (s *RouterSuite) TestLogin_LegacyPlaintextRow() {
	s.Require().NoError(s.db.DB().Create(&postgres.UserSchema{Email: "old@b.com", Password: "legacy"}).Error)

	w := s.do(http.MethodPost, "/usuarios/login", `{"email":"old@b.com","password":"legacy"}`)
	s.Equal(http.StatusOK, w.Code)

	var stored postgres.UserSchema
	s.Require().NoError(s.db.DB().Where("email = ?", "old@b.com").First(&stored).Error)
	s.True(security.IsHash(stored.Password))

	again := s.do(http.MethodPost, "/usuarios/login", `{"email":"old@b.com","password":"legacy"}`)
	s.Equal(http.StatusOK, again.Code)
}

func (s *RouterSuite) TestUsers_ListGetDelete() {
	s.do(http.MethodPost, "/usuarios", `{"email":"a@b.com","password":"p"}`)
	s.do(http.MethodPost, "/usuarios", `{"email":"c@d.com","password":"p"}`)

	list := s.do(http.MethodGet, "/usuarios", "")
	s.Equal(http.StatusOK, list.Code)
	var users []handler.UserResponse
	s.decode(list, &users)
	s.Require().Len(users, 2)

	get := s.do(http.MethodGet, "/usuarios/"+itoa(users[0].ID), "")
	s.Equal(http.StatusOK, get.Code)

	del := s.do(http.MethodDelete, "/usuarios/"+itoa(users[0].ID), "")
	s.Equal(http.StatusOK, del.Code)
	var deleted handler.DeleteUserResponse
	s.decode(del, &deleted)
	s.Equal("Usuario eliminado correctamente", deleted.Mensaje)
	s.Equal(users[0], deleted.Usuario)

	for _, path := range []string{"/usuarios/" + itoa(users[0].ID), "/usuarios/999", "/usuarios/abc"} {
		w := s.do(http.MethodGet, path, "")
		s.Equal(http.StatusNotFound, w.Code, path)
		s.JSONEq(`{"error":"Usuario no encontrado"}`, w.Body.String())
	}
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/usuarios/999", "").Code)
}

func (s *RouterSuite) TestDish_RoundTrip() {
	created := s.do(http.MethodPost, "/platos", `{"nombre":"Taco","descripcion":"al pastor","precio":3.5,"img":"t.png"}`)
	s.Require().Equal(http.StatusCreated, created.Code)

	var d handler.DishResponse
	s.decode(created, &d)
	s.Positive(d.ID)

	got := s.do(http.MethodGet, "/platos/"+itoa(d.ID), "")
	s.Equal(http.StatusOK, got.Code)
	var fetched handler.DishResponse
	s.decode(got, &fetched)
	s.Equal(d, fetched)
	s.Equal(handler.DishResponse{ID: d.ID, Nombre: "Taco", Descripcion: "al pastor", Precio: 3.5, Img: "t.png"}, fetched)
}

func (s *RouterSuite) TestDish_UpdateReplacesAllFields() {
	created := s.do(http.MethodPost, "/platos", `{"nombre":"Taco","descripcion":"al pastor","precio":3.5,"img":"t.png"}`)
	var d handler.DishResponse
	s.decode(created, &d)

	partial := s.do(http.MethodPut, "/platos/"+itoa(d.ID), `{"nombre":"Burrito"}`)
	s.Equal(http.StatusBadRequest, partial.Code)

	unchanged := s.do(http.MethodGet, "/platos/"+itoa(d.ID), "")
	s.Contains(unchanged.Body.String(), `"nombre":"Taco"`)

	full := s.do(http.MethodPut, "/platos/"+itoa(d.ID), `{"nombre":"Burrito","descripcion":"","precio":0,"img":""}`)
	s.Equal(http.StatusOK, full.Code)
	s.JSONEq(`{"mensaje":"Plato actualizado correctamente","plato":{"id":`+itoa(d.ID)+`,"nombre":"Burrito","descripcion":"","precio":0,"img":""}}`, full.Body.String())
}

func (s *RouterSuite) TestDish_MissingIDs() {
	update := `{"nombre":"X","descripcion":"","precio":1,"img":""}`

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/platos/999", ""},
		{http.MethodPut, "/platos/999", update},
		{http.MethodDelete, "/platos/999", ""},
		{http.MethodDelete, "/platos/abc", ""},
	} {
		w := s.do(tc.method, tc.path, tc.body)
		s.Equal(http.StatusNotFound, w.Code, tc.method+" "+tc.path)
		s.JSONEq(`{"error":"Plato no encontrado"}`, w.Body.String())
	}
}

func (s *RouterSuite) TestDish_Delete() {
	created := s.do(http.MethodPost, "/platos", `{"nombre":"Sopa","descripcion":"","precio":2,"img":""}`)
	var d handler.DishResponse
	s.decode(created, &d)

	w := s.do(http.MethodDelete, "/platos/"+itoa(d.ID), "")
	s.Equal(http.StatusOK, w.Code)
	var resp handler.DishMessageResponse
	s.decode(w, &resp)
	s.Equal("Plato eliminado correctamente", resp.Mensaje)
	s.Equal(d, resp.Plato)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/platos/"+itoa(d.ID), "").Code)
}

func (s *RouterSuite) TestStorageFault_IsInternal() {
	s.Require().NoError(s.db.Close())

	w := s.do(http.MethodGet, "/platos", "")

	s.Equal(http.StatusInternalServerError, w.Code)
	s.JSONEq(`{"error":"Error interno del servidor"}`, w.Body.String())
	s.Equal(http.StatusServiceUnavailable, s.do(http.MethodGet, "/health", "").Code)
}

func (s *RouterSuite) TestCORS_Preflight() {
	req := httptest.NewRequest(http.MethodOptions, "/platos", nil)
	req.Header.Set("Origin", "http://menu.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusNoContent, w.Code)
	s.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
