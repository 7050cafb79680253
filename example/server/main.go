// Command server exposes the booking flow over HTTP: one endpoint to
// open a session, one to post a turn. Session state lives in memory or
// Redis depending on config.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hvacdesk/bookingagent/agent"
)

type Config struct {
	Addr string `yaml:"addr"`
	LLM  struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"llm"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	conf := &Config{Addr: ":8080"}
	if err := yaml.Unmarshal(file, conf); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if conf.LLM.APIKey == "" {
		conf.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return conf, nil
}

func main() {
	confPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	config, err := loadConfig(*confPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  config.LLM.APIKey,
		Model:   config.LLM.Model,
		BaseURL: config.LLM.BaseURL,
	})
	if err != nil {
		logger.Fatal("create chat model", zap.Error(err))
	}

	var store agent.StateReadWriter = agent.NewMemoryStateReadWriter()
	if config.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis ping", zap.Error(err))
		}
		store = agent.NewRedisStateReadWriter(client)
		logger.Info("using redis session store", zap.String("addr", config.Redis.Addr))
	}

	flow, err := agent.NewToolBasedFlow(cm, store)
	if err != nil {
		logger.Fatal("create flow", zap.Error(err))
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/api/sessions", func(c *gin.Context) {
		id := agent.NewSessionID()
		logger.Info("session opened", zap.String("session_id", id))
		c.JSON(http.StatusCreated, gin.H{"session_id": id})
	})

	router.POST("/api/sessions/:id/turn", func(c *gin.Context) {
		var body struct {
			Message string `json:"message"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}
		id := c.Param("id")
		resp, err := flow.Invoke(agent.WithSessionID(c.Request.Context(), id), body.Message)
		if err != nil {
			logger.Warn("turn failed", zap.String("session_id", id), zap.Error(err))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		logger.Info("turn processed",
			zap.String("session_id", id),
			zap.String("stage", string(resp.Directive.Stage)),
			zap.String("strategy", string(resp.Directive.Strategy)),
			zap.String("target", resp.Directive.TargetField),
			zap.String("outcome", string(resp.Outcome)),
		)
		c.JSON(http.StatusOK, resp)
	})

	router.DELETE("/api/sessions/:id", func(c *gin.Context) {
		id := c.Param("id")
		if err := store.Remove(agent.WithSessionID(c.Request.Context(), id)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	})

	logger.Info("listening", zap.String("addr", config.Addr))
	if err := router.Run(config.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
