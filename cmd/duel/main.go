package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"monadmons-arena/models"
	"monadmons-arena/services"
	"monadmons-arena/storeclient"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "cards":
		runCards(os.Args[2:])
	case "starter":
		runStarter(os.Args[2:])
	case "daily":
		runDaily(os.Args[2:])
	case "play":
		runPlay(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  duel cards   --wallet ADDR [--server URL]")
	fmt.Println("  duel starter --wallet ADDR [--server URL]")
	fmt.Println("  duel daily   --wallet ADDR [--server URL]")
	fmt.Println("  duel play    --wallet ADDR [--room CODE] [--card ID] [--server URL]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  cards    List the cards a wallet owns")
	fmt.Println("  starter  Claim the starter card for an empty wallet")
	fmt.Println("  daily    Claim the daily card")
	fmt.Println("  play     Create or join a room and battle from the terminal")
}

type commonFlags struct {
	server *string
	wallet *string
}

func newFlags(name string) (*flag.FlagSet, commonFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	server := os.Getenv("ARENA_URL")
	if server == "" {
		server = "http://localhost:5200"
	}
	return fs, commonFlags{
		server: fs.String("server", server, "arena API base URL"),
		wallet: fs.String("wallet", "", "wallet address to act as"),
	}
}

// client validates --wallet, normalizing it in place, and returns an API client.
func (f commonFlags) client() *storeclient.Client {
	wallet, err := checkWallet(*f.wallet)
	if err != nil {
		fatalf("%v", err)
	}
	*f.wallet = wallet
	return storeclient.New(*f.server, os.Getenv("GAME_SERVICE_TOKEN"))
}

func checkWallet(wallet string) (string, error) {
	if wallet == "" {
		return "", fmt.Errorf("--wallet is required")
	}
	if !services.ValidAddress(wallet) {
		return "", fmt.Errorf("--wallet %q must be a 0x-prefixed 20-byte hex address", wallet)
	}
	return services.NormalizeAddress(wallet), nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func runCards(args []string) {
	fs, f := newFlags("cards")
	fs.Parse(args)
	c := f.client()

	views, err := c.Collection(context.Background(), *f.wallet)
	if err != nil {
		fatalf("%v", err)
	}
	if len(views) == 0 {
		fmt.Println("No cards yet. Try `duel starter`.")
		return
	}
	for _, v := range views {
		fmt.Printf("%-10s %-12s %-9s HP %-4d via %s\n", v.Card.ID, v.Card.Name, v.Card.Tier, v.Card.MaxHP, v.AcquiredVia)
	}
}

func runStarter(args []string) {
	fs, f := newFlags("starter")
	fs.Parse(args)
	card, err := f.client().ClaimStarter(context.Background(), *f.wallet)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("🎁 Received %s\n", card.Name)
}

func runDaily(args []string) {
	fs, f := newFlags("daily")
	fs.Parse(args)
	c := f.client()
	ctx := context.Background()

	status, err := c.CanClaimDaily(ctx, *f.wallet)
	if err != nil {
		fatalf("%v", err)
	}
	if !status.CanClaim {
		fmt.Printf("Next daily claim at %s\n", status.NextClaimAt.Local().Format(time.RFC1123))
		return
	}
	card, err := c.ClaimDaily(ctx, *f.wallet)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("🎁 Received %s\n", card.Name)
}

func runPlay(args []string) {
	fs, f := newFlags("play")
	room := fs.String("room", "", "4-character room code (random when empty)")
	cardID := fs.String("card", "", "card id to stake (first owned card when empty)")
	fs.Parse(args)
	c := f.client()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	card, err := pickCard(ctx, c, *f.wallet, *cardID)
	if err != nil {
		fatalf("%v", err)
	}

	session := services.NewSession(*f.wallet, c, c, services.SessionOptions{})
	defer session.Leave()

	code, err := session.EnterRoom(*room)
	if err != nil {
		fatalf("%v", err)
	}
	if err := session.SelectCard(ctx, card); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Room %s, staking %s (%d HP)\n", code, card.Name, card.MaxHP)
	for i, m := range card.Moves {
		fmt.Printf("  %d) %-14s %-7s %3d  %s\n", i+1, m.Name, m.Type, m.Value, m.Description)
	}

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- strings.TrimSpace(sc.Text())
		}
		close(lines)
	}()

	var printed, notices int
	var phase services.Phase
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok || line == "quit" {
				return
			}
			move := resolveMoveName(card, line)
			if err := session.SubmitMove(ctx, move); err != nil {
				fmt.Printf("⚠️ %v\n", err)
			}
		case <-ticker.C:
			st := session.State()
			for ; printed < len(st.Log); printed++ {
				fmt.Println("  " + st.Log[printed])
			}
			for ; notices < len(st.Notices); notices++ {
				fmt.Println(st.Notices[notices])
			}
			if st.Phase != phase {
				phase = st.Phase
				announce(st)
			}
			if st.Phase == services.PhaseResult {
				waitForSettlement(session, code, c)
				return
			}
		}
	}
}

func announce(st services.LocalState) {
	switch st.Phase {
	case services.PhaseWaiting:
		fmt.Println("⏳ Waiting for an opponent...")
	case services.PhaseBattle:
		fmt.Printf("⚔️  Battle! You %d HP, opponent %d HP. Enter a move name or number.\n", st.MyHP, st.OpponentHP)
	case services.PhaseResult:
		switch st.Outcome {
		case services.OutcomeMe:
			fmt.Println("🏆 You won!")
		case services.OutcomeOpponent:
			fmt.Println("💀 You lost.")
		default:
			fmt.Println("🤝 Draw.")
		}
	}
}

func waitForSettlement(session *services.Session, code string, c *storeclient.Client) {
	room, err := c.ReadRoom(context.Background(), code)
	if err != nil {
		return
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && !session.SettlementDone(room.MatchID) {
		time.Sleep(100 * time.Millisecond)
	}
}

func resolveMoveName(card models.CardDefinition, input string) string {
	var n int
	if _, err := fmt.Sscanf(input, "%d", &n); err == nil && n >= 1 && n <= len(card.Moves) {
		return card.Moves[n-1].Name
	}
	for _, m := range card.Moves {
		if strings.EqualFold(m.Name, input) {
			return m.Name
		}
	}
	return input
}

func pickCard(ctx context.Context, c *storeclient.Client, wallet, cardID string) (models.CardDefinition, error) {
	views, err := c.Collection(ctx, wallet)
	if err != nil {
		return models.CardDefinition{}, err
	}
	if len(views) == 0 {
		return models.CardDefinition{}, fmt.Errorf("wallet owns no cards, run `duel starter` first")
	}
	if cardID == "" {
		return views[0].Card, nil
	}
	for _, v := range views {
		if v.Card.ID == cardID {
			return v.Card, nil
		}
	}
	return models.CardDefinition{}, fmt.Errorf("%s: %w", cardID, services.ErrCardNotOwned)
}
