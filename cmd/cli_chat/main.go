package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"deepcrawler/internal/config"
	"deepcrawler/internal/crawler"
	"deepcrawler/internal/logger"
	"deepcrawler/internal/repository"
	"deepcrawler/internal/service"
	"deepcrawler/internal/store"
)

const cliUserEmail = "cli@deepcrawler.local"

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	// solo archivo de log si está configurado; la consola queda para el chat
	zl := zap.NewNop()
	if cfg.LogFilePath != "" {
		zl = logger.New(cfg.LogFilePath, true)
	}
	defer zl.Sync()

	st, err := store.Open(ctx, cfg, zl)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	userSvc := service.NewUserService(zl, st.Users, nil)
	crawlerClient := crawler.NewClient(cfg.CrawlerAPIURL, cfg.CrawlerHealthURL, cfg.CrawlerTimeout, zl)
	chatSvc := service.NewChatService(zl, st.Users, st.Sessions, service.NewMessageService(st.Messages), crawlerClient)

	if err := ensureUser(ctx, st.Users, userSvc); err != nil {
		log.Fatalf("preparar usuario cli: %v", err)
	}

	fmt.Println("===== DeepCrawler CLI =====")
	fmt.Println("Comandos: /history, /new, /exit")

	var sessionID *int64
	for {
		fmt.Print("\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "/exit":
			return
		case "/new":
			sessionID = nil
			fmt.Println("Nueva conversación.")
			continue
		case "/history":
			printHistory(ctx, chatSvc)
			continue
		}

		res, err := chatSvc.Send(ctx, service.SendInput{Prompt: line, SessionID: sessionID, UserEmail: cliUserEmail})
		if err != nil {
			printSendError(err)
			continue
		}
		id := res.SessionID
		sessionID = &id
		fmt.Printf("[%s]\n%s\n", res.SessionTitle, res.Answer)
	}
}

func ensureUser(ctx context.Context, users repository.UserRepository, userSvc *service.UserService) error {
	if _, err := users.GetByEmail(ctx, cliUserEmail); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	password := uuid.NewString()
	_, err := userSvc.Register(ctx, service.RegisterInput{
		Username:        "cli",
		Email:           cliUserEmail,
		Password:        password,
		ConfirmPassword: password,
	})
	return err
}

func printHistory(ctx context.Context, chatSvc *service.ChatService) {
	history, err := chatSvc.History(ctx, cliUserEmail)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if len(history) == 0 {
		fmt.Println("Sin conversaciones.")
		return
	}
	for _, s := range history {
		last := "(sin mensajes)"
		if s.LastMessageContent != nil {
			last = truncate(*s.LastMessageContent, 60)
		}
		fmt.Printf("#%d %s  %s\n    %s\n", s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Title, last)
	}
}

func printSendError(err error) {
	var upErr *crawler.UpstreamError
	switch {
	case errors.As(err, &upErr):
		fmt.Printf("El crawler respondió con error (%d): %s\n", upErr.StatusCode, truncate(string(upErr.Body), 200))
	case errors.Is(err, crawler.ErrUnavailable):
		fmt.Println("El servicio del crawler no está disponible.")
	default:
		fmt.Printf("error: %v\n", err)
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
