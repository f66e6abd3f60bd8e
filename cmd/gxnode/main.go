// Command gxnode runs a single peer of the network: the chain state
// machine, the miner, the gossip adapter, and an interactive console for
// checking balances and sending value (spec §6/6A).
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/ground-x/gxchain/blockchain/types"
	"github.com/ground-x/gxchain/cmd/utils"
	"github.com/ground-x/gxchain/common"
	"github.com/ground-x/gxchain/crypto"
	"github.com/ground-x/gxchain/gossip"
	"github.com/ground-x/gxchain/log"
	"github.com/ground-x/gxchain/node"
	"github.com/ground-x/gxchain/work"
)

var logger = log.NewModuleLogger("cmd/gxnode")

var app = utils.NewApp("", "a minimal proof-of-work cryptocurrency node")

func init() {
	app.Flags = []cli.Flag{
		utils.PortFlag,
		utils.RendezvousFlag,
		utils.LogLevelFlag,
		utils.ClientOnlyFlag,
	}
	app.Action = run
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	log.SetLevel(ctx.String(utils.LogLevelFlag.Name))

	pub, sec, err := crypto.GenerateKeyPair()
	if err != nil {
		utils.Fatalf("failed to generate signing key pair: %v", err)
	}
	fmt.Printf("public key: %s\n", pub.Hex())

	gsp, err := gossip.NewLibP2PGossip(context.Background(), ctx.Int(utils.PortFlag.Name), ctx.String(utils.RendezvousFlag.Name))
	if err != nil {
		utils.Fatalf("failed to start gossip overlay: %v", err)
	}

	if ctx.Bool(utils.ClientOnlyFlag.Name) {
		return runClientOnly(gsp, pub, sec)
	}

	n := node.New(pub, gsp)
	utils.StartNode(n)
	go n.Run()

	miner := work.NewMiner(n, pub)
	go miner.Run()

	runConsole(n, pub, sec)
	miner.Stop()
	n.Stop()
	return nil
}

// runClientOnly mirrors original_source/client.rs's Client: it joins only
// the transactions topic and never runs a chain or a miner (spec
// SUPPLEMENTED FEATURES).
func runClientOnly(gsp gossip.Gossip, pub common.PublicKey, sec common.SecretKey) error {
	if err := gsp.Subscribe("transactions"); err != nil {
		utils.Fatalf("failed to subscribe to transactions topic: %v", err)
	}
	fmt.Println("client-only mode: enter \"<hex-to> <amount>\" to send, or \"exit\"")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("> ")
		if err != nil {
			return nil
		}
		line.AppendHistory(input)
		input = strings.TrimSpace(input)
		if input == "exit" {
			return nil
		}
		parts := strings.Fields(input)
		if len(parts) != 2 {
			fmt.Println("usage: <hex-to> <amount>")
			continue
		}
		to, err := common.PublicKeyFromHex(parts[0])
		if err != nil {
			fmt.Println("malformed hex public key:", err)
			continue
		}
		amount, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			fmt.Println("malformed amount:", err)
			continue
		}
		tx, err := types.NewTransaction(to, amount, pub, sec)
		if err != nil {
			fmt.Println("failed to build transaction:", err)
			continue
		}
		enc, err := rlp.EncodeToBytes(tx)
		if err != nil {
			fmt.Println("failed to encode transaction:", err)
			continue
		}
		if err := gsp.Publish("transactions", enc); err != nil {
			fmt.Println("failed to publish transaction:", err)
			continue
		}
		fmt.Println("sent")
	}
}

// runConsole drives the full menu spec.md §6 specifies: show candidate,
// show balance, show chain, submit transaction, exit.
func runConsole(n *node.Node, pub common.PublicKey, sec common.SecretKey) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	const menu = `
1) show current candidate block
2) show balance of own public key
3) show whole chain
4) submit transaction
5) exit
`
	for {
		fmt.Print(menu)
		choice, err := line.Prompt("> ")
		if err != nil {
			return
		}
		line.AppendHistory(choice)

		switch strings.TrimSpace(choice) {
		case "1":
			fmt.Println(ask(n, node.ShowCandidate, nil))
		case "2":
			fmt.Println(ask(n, node.ShowBalance, nil))
		case "3":
			fmt.Println(ask(n, node.ShowChain, nil))
		case "4":
			submitViaConsole(n, line, pub, sec)
		case "5":
			return
		default:
			fmt.Println("unrecognized option")
		}
	}
}

func submitViaConsole(n *node.Node, line *liner.State, pub common.PublicKey, sec common.SecretKey) {
	toStr, err := line.Prompt("payee (hex public key): ")
	if err != nil {
		return
	}
	to, err := common.PublicKeyFromHex(strings.TrimSpace(toStr))
	if err != nil {
		fmt.Println("malformed hex payee:", err)
		return
	}
	amountStr, err := line.Prompt("amount: ")
	if err != nil {
		return
	}
	amount, err := strconv.ParseUint(strings.TrimSpace(amountStr), 10, 64)
	if err != nil {
		fmt.Println("malformed amount:", err)
		return
	}
	if balance := n.Balance(pub); amount > balance {
		fmt.Printf("insufficient balance: have %d, want to send %d\n", balance, amount)
		return
	}

	tx, err := types.NewTransaction(to, amount, pub, sec)
	if err != nil {
		fmt.Println("failed to build transaction:", err)
		return
	}

	result := make(chan string, 1)
	n.Actions() <- node.UserAction{Kind: node.SubmitTransaction, Tx: tx, Result: result}
	fmt.Println(<-result)
}

func ask(n *node.Node, kind node.ActionKind, tx *types.Transaction) string {
	result := make(chan string, 1)
	n.Actions() <- node.UserAction{Kind: kind, Tx: tx, Result: result}
	return <-result
}

