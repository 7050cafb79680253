// Command hvac is an interactive booking REPL: it collects an HVAC
// service booking over the terminal, one question per turn, and appends
// completed bookings to a JSONL file.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/redis/go-redis/v9"

	"github.com/hvacdesk/bookingagent/agent"
	"github.com/hvacdesk/bookingagent/command"
	"github.com/hvacdesk/bookingagent/record"
	"github.com/hvacdesk/bookingagent/schema"
	"github.com/hvacdesk/bookingagent/types"
)

func main() {
	conf := flag.String("config", "config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	config, err := loadConfig(*conf)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	if err := startApp(context.Background(), config); err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, config *Config) error {
	if config.LLM.APIKey == "" {
		return fmt.Errorf("no API key: set llm.api_key in config or OPENAI_API_KEY")
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  config.LLM.APIKey,
		Model:   config.LLM.Model,
		BaseURL: config.LLM.BaseURL,
	})
	if err != nil {
		return err
	}

	var store agent.StateReadWriter = agent.NewMemoryStateReadWriter()
	if config.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		store = agent.NewRedisStateReadWriter(client)
	}

	flow, err := agent.NewToolBasedFlow(cm, store)
	if err != nil {
		return err
	}

	sessionID := agent.NewSessionID()
	ctx = agent.WithSessionID(ctx, sessionID)

	fmt.Println("HVAC Booking Service")
	fmt.Printf("Tell me what you need; answer one question at a time. Send %s when you want to stop.\n\n", command.DoneToken)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("you: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("input closed, bye.")
			return nil
		}
		input = strings.TrimRight(input, "\n")

		resp, iErr := flow.Invoke(ctx, input)
		if iErr != nil {
			fmt.Printf("(could not process that, please try again: %v)\n", iErr)
			continue
		}
		fmt.Printf("\nagent: %s\n\n", resp.Message)

		if !resp.Completed {
			continue
		}
		if resp.Outcome == agent.OutcomeComplete {
			service := resp.Record.Get("service_type").Value
			if label, ok := schema.ServiceTypeNames[service]; ok {
				service = label
			}
			fmt.Printf("Booking confirmed (%s):\n", service)
			fmt.Println(types.FormatRecordTable(resp.Record.Rows()))
			if err := saveBookingRecord(config.BookingLog, sessionID, resp.Outcome, resp.Record); err != nil {
				fmt.Printf("(failed to save booking record: %v)\n", err)
			} else {
				fmt.Printf("Booking record saved to %s\n", config.BookingLog)
			}
		} else {
			fmt.Println("Session ended before the booking was complete; partial record:")
			fmt.Println(types.FormatRecordTable(resp.Record.Rows()))
		}
		return nil
	}
}

type bookingLogEntry struct {
	SessionID string         `json:"session_id"`
	Outcome   agent.Outcome  `json:"outcome"`
	Record    *record.Record `json:"record"`
	Timestamp time.Time      `json:"timestamp"`
}

func saveBookingRecord(path, sessionID string, outcome agent.Outcome, rec *record.Record) error {
	line, err := sonic.Marshal(bookingLogEntry{
		SessionID: sessionID,
		Outcome:   outcome,
		Record:    rec,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(line, '\n'))
	return err
}
