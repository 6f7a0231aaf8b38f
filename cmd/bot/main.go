package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"p2p-offer-radar-bot/internal/core/domain/broadcast"
	"p2p-offer-radar-bot/internal/delivery/telegram"
	"p2p-offer-radar-bot/internal/delivery/telegram/formatters"
	"p2p-offer-radar-bot/internal/delivery/telegram/services/broadcast_monitor"
	"p2p-offer-radar-bot/internal/delivery/telegram/services/order_book"
	"p2p-offer-radar-bot/internal/delivery/telegram/services/orders"
	"p2p-offer-radar-bot/internal/delivery/telegram/services/trading_session"
	"p2p-offer-radar-bot/internal/infrastructure/api/openrouter"
	"p2p-offer-radar-bot/internal/infrastructure/cache/redis"
	"p2p-offer-radar-bot/internal/infrastructure/config"
	"p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/database"
	group "p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/repository/group"
	order "p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/repository/order"
	trading_session_db "p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/repository/trading_session"
	users "p2p-offer-radar-bot/internal/infrastructure/persistence/postgres/repository/users"
	"p2p-offer-radar-bot/pkg/logger"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}

	if err := logger.InitGlobal(cfg.LogPath, cfg.LogLevel, cfg.Debug); err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}

	printHeader("P2P OFFER RADAR - АГРЕГАТОР ЛИКВИДНОСТИ OTC ГРУПП")
	fmt.Printf("🔧 Конфигурация:\n")
	fmt.Printf("   Извлечение предложений: %s\n",
		map[bool]string{true: "OpenRouter ⚡", false: "Деградированный режим 🧪"}[cfg.IsExtractionEnabled()])
	fmt.Printf("   Модель: %s\n", cfg.OpenRouter.Model)
	fmt.Printf("   Администраторов: %d\n", len(cfg.Telegram.AdminIDs))
	fmt.Printf("   Окно сбора по умолчанию: %d мин.\n", int(cfg.Broadcast.DefaultDuration.Minutes()))
	fmt.Printf("   TTL сессии по умолчанию: %d мин.\n", cfg.Broadcast.DefaultSessionTTLMinutes)
	fmt.Println()

	// База данных
	fmt.Println("💾 Подключение к PostgreSQL...")
	dbService := database.NewDatabaseService(cfg)
	if err := dbService.Start(); err != nil {
		log.Fatalf("Не удалось запустить базу данных: %v", err)
	}
	db := dbService.GetDB()

	// Redis: сохранение активного окна между рестартами
	fmt.Println("📡 Подключение к Redis...")
	redisService := redis.NewRedisService(cfg)
	var snapshotStore broadcast.SnapshotStore
	if err := redisService.Start(); err != nil {
		logger.Warn("⚠️ Redis недоступен, окно мониторинга не переживет рестарт: %v", err)
	} else {
		snapshotStore = redis.NewSnapshotStore(
			redisService.GetClient(),
			time.Duration(cfg.Broadcast.DefaultSessionTTLMinutes)*time.Minute,
		)
	}

	// Репозитории
	groupRepo := group.NewGroupRepository(db)
	usersRepo := users.NewUserRepository(db)
	orderRepo := order.NewOrderRepository(db)
	sessionRepo := trading_session_db.NewTradingSessionRepository(db)

	// Менеджер активного окна мониторинга
	manager := broadcast.NewManager(snapshotStore)

	// Извлечение предложений
	analyzer := openrouter.NewClient(cfg)

	// Доставка сообщений
	sender := telegram.NewMessageSender(cfg)

	// Сервисы
	dashboardFormatter := formatters.NewDashboardFormatter(cfg.Broadcast.IncludeUnknownSide)
	monitor := broadcast_monitor.NewService(manager, analyzer, sender, dashboardFormatter, cfg.OpenRouter.Timeout)
	sessionService := trading_session.NewService(sessionRepo, groupRepo)
	bookService := order_book.NewService(sessionRepo, orderRepo, groupRepo)
	orderService := orders.NewService(orderRepo, sessionRepo)

	sessionService.StartSweeper()

	// Бот и polling
	bot := telegram.NewTelegramBot(cfg, sender, manager, monitor, sessionService, bookService, orderService, groupRepo, usersRepo)
	updatesHandler := telegram.NewUpdatesHandler(cfg, bot)

	if cfg.Telegram.Enabled {
		if err := updatesHandler.Start(); err != nil {
			log.Fatalf("Не удалось запустить polling: %v", err)
		}
		fmt.Println("🤖 Telegram бот запущен")
	} else {
		fmt.Println("⚠️ Telegram отключен, бот работает вхолостую")
	}

	// Если окно пережило рестарт, сразу обновляем табло
	if manager.IsMonitoring(0) {
		monitor.PushDashboard()
		fmt.Println("♻️ Активное окно мониторинга восстановлено из Redis")
	}

	fmt.Println("🚀 Бот готов к работе")
	fmt.Println()

	// Обработка сигналов для graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)
	<-stopChan

	fmt.Println()
	printHeader("Завершение работы")

	if err := updatesHandler.Stop(); err != nil {
		logger.Error("❌ Ошибка остановки polling: %v", err)
	}
	sessionService.StopSweeper()

	if redisService.HealthCheck() {
		if err := redisService.Stop(); err != nil {
			logger.Error("❌ Ошибка остановки Redis: %v", err)
		}
	}
	if err := dbService.Stop(); err != nil {
		logger.Error("❌ Ошибка остановки базы данных: %v", err)
	}

	fmt.Println("✅ Бот остановлен корректно")
}

func printHeader(text string) {
	width := 80
	padding := (width - len(text)) / 2

	if padding < 0 {
		padding = 0
	}

	fmt.Println(strings.Repeat("═", width))
	fmt.Printf("%s%s\n", strings.Repeat(" ", padding), text)
	fmt.Println(strings.Repeat("═", width))
}
