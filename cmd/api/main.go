package main

import (
	"context"
	"strconv"
	"time"

	"app/internal/cart"
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cache"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/logging"
	"app/internal/notification"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	logger := logging.New()

	//.envは無くても動く（本番は環境変数で渡す）
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//商品が空なら初期データを入れる
	if err := db.SeedProducts(context.Background(), productRepo); err != nil {
		panic(err)
	}

	//カートはメモリ上のセッションレジストリが持つ
	sessions := cart.NewSessions()
	defer sessions.Close()

	//Redisがあればカートのスナップショットをキャッシュする
	var cartCache cache.CartCache = cache.NewNoopCache()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cartCache = cache.NewRedisCache(rdb)
	}

	//Postmarkが設定されていれば注文確定メールを送る
	var notifier notification.OrderNotifier = notification.NewNoopNotifier()
	if cfg.PostmarkServerToken != "" && cfg.EmailSender != "" {
		notifier = notification.NewPostmarkNotifier(cfg.PostmarkServerToken, cfg.EmailSender)
	}

	//JWT issuer
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 24 * time.Hour,
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, issuer)
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(sessions, productRepo, cartCache, logger)
	checkoutUC := usecase.NewCheckoutUsecase(sessions, txManager, cartCache, notifier, logger)
	orderUC := usecase.NewOrderUsecase(txManager)

	//Handler生成
	authH := handler.NewAuthHandler(authUC)
	productH := handler.NewProductHandler(productUC)
	cartH := handler.NewCartHandler(cartUC)
	orderH := handler.NewOrderHandler(checkoutUC, orderUC)

	//Server起動
	addr := ":" + cfg.Port
	if cfg.Port[0] == ':' {
		addr = cfg.Port
	}

	e := server.New(cfg, authH, productH, cartH, orderH)
	if err := server.Start(addr, e); err != nil {
		panic(err)
	}
}
