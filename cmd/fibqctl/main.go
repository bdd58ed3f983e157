// fibqctl talks to a running fibqd over RPC and runs the heap benchmark locally.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/lambdcalculus/fibq/internal/bench"
	"github.com/lambdcalculus/fibq/internal/db"
	"github.com/lambdcalculus/fibq/pkg/logger"
	"github.com/lambdcalculus/fibq/pkg/pqueue"
	"github.com/lambdcalculus/fibq/pkg/rpc"
)

type cmdHandler func(args []string)

type command struct {
	handler     cmdHandler
	flagset     *pflag.FlagSet
	args        int
	description string
	usage       string
}

var commands map[string]command

var (
	rpcPort int
	rpcHost string

	cmdBench   *pflag.FlagSet
	benchCfg   = bench.ConfigDefault()
	benchDB    string
	cmdHistory *pflag.FlagSet
	historyDB  string
	histLimit  int
)

func init() {
	logger.SetLogger(logger.NewLogger(logFormat, logger.LevelInfo, os.Stderr))

	pflag.CommandLine.SetOutput(os.Stdout)
	pflag.CommandLine.Usage = printUsage
	pflag.CommandLine.SetInterspersed(false)
	pflag.IntVarP(&rpcPort, "port", "p", 8082, "port used for RPC")
	pflag.StringVar(&rpcHost, "host", "localhost", "host running fibqd")
	pflag.BoolP("verbose", "v", false, "log debug messages")

	cmdBench = pflag.NewFlagSet("bench", pflag.ExitOnError)
	cmdBench.IntVar(&benchCfg.Ops, "ops", benchCfg.Ops, "number of operations")
	cmdBench.Int64Var(&benchCfg.Seed, "seed", benchCfg.Seed, "random seed")
	cmdBench.Float64Var(&benchCfg.EnqueueBias, "bias", benchCfg.EnqueueBias, "probability of an enqueue")
	cmdBench.Int64Var(&benchCfg.KeyRange, "keys", 0, "draw keys from [0, keys); 0 for any int64")
	cmdBench.StringVar(&benchDB, "db", "", "record the run in this SQLite database")

	cmdHistory = pflag.NewFlagSet("history", pflag.ExitOnError)
	cmdHistory.StringVar(&historyDB, "db", "bench.sqlite", "SQLite database holding recorded runs")
	cmdHistory.IntVar(&histLimit, "limit", 10, "how many runs to show; 0 for all")

	commands = map[string]command{
		"help": {handleHelp, nil, 0, "shows usage information about a command",
			"fibqctl help [command]"},
		"enqueue": {handleEnqueue, nil, 1, "adds integers to the queue",
			"fibqctl -p [RPC port] enqueue [value...]"},
		"dequeue": {handleDequeue, nil, 0, "removes and prints the queue's minimum",
			"fibqctl -p [RPC port] dequeue"},
		"min": {handleMin, nil, 0, "prints the queue's minimum",
			"fibqctl -p [RPC port] min"},
		"size": {handleSize, nil, 0, "prints the queue's size",
			"fibqctl -p [RPC port] size"},
		"bench": {handleBench, cmdBench, 0, "runs the amortized cost experiment locally",
			"fibqctl bench [--ops n] [--seed s] [--bias p] [--keys k] [--db file]"},
		"history": {handleHistory, cmdHistory, 0, "lists recorded benchmark runs",
			"fibqctl history [--db file] [--limit n]"},
	}
}

func main() {
	pflag.Parse()
	if v, _ := pflag.CommandLine.GetBool("verbose"); v {
		logger.SetLogger(logger.NewLogger(logFormat, logger.LevelDebug, os.Stderr))
	}

	if len(pflag.Args()) < 1 {
		logger.Fatalf("No command given.")
		pflag.CommandLine.Usage()
		os.Exit(1)
	}

	cmdName := pflag.Args()[0]
	cmd, ok := commands[cmdName]
	if !ok {
		logger.Fatalf("Unknown command '%v'.", cmdName)
		pflag.CommandLine.Usage()
		os.Exit(1)
	}

	cmdArgs := pflag.Args()[1:]
	if cmd.flagset != nil {
		cmd.flagset.Parse(cmdArgs)
		cmdArgs = cmd.flagset.Args()
	}

	if len(cmdArgs) < cmd.args {
		logger.Fatalf("Not enough arguments for %v (need %v, got %v).", cmdName, cmd.args, len(cmdArgs))
		handleHelp([]string{cmdName})
		os.Exit(1)
	}
	cmd.handler(cmdArgs)
	os.Exit(0)
}

func handleHelp(args []string) {
	if len(args) < 1 {
		pflag.CommandLine.Usage()
		return
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Printf("help: command '%v' does not exist.\n", args[0])
		os.Exit(1)
	}
	fmt.Printf("Usage of %v:\n", args[0])
	fmt.Printf("    %v\n", cmd.usage)
	if cmd.flagset != nil {
		cmd.flagset.SetOutput(os.Stdout)
		cmd.flagset.PrintDefaults()
	}
}

func handleEnqueue(args []string) {
	values := make([]int64, len(args))
	for i, a := range args {
		v, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			logger.Errorf("enqueue: '%v' is not an integer.", a)
			os.Exit(1)
		}
		values[i] = v
	}

	client := dial()
	defer client.Close()
	size, err := client.Enqueue(values...)
	if err != nil {
		logger.Errorf("enqueue: Failed (%s).", err)
		os.Exit(1)
	}
	fmt.Printf("enqueue: Added %v value(s), size is now %v.\n", len(values), size)
}

func handleDequeue(args []string) {
	client := dial()
	defer client.Close()
	printValue("dequeue", client.DequeueMin)
}

func handleMin(args []string) {
	client := dial()
	defer client.Close()
	printValue("min", client.GetMin)
}

func printValue(name string, get func() (rpc.ValueReply, error)) {
	reply, err := get()
	if errors.Is(err, pqueue.ErrEmptyHeap) {
		fmt.Printf("%v: The queue is empty.\n", name)
		os.Exit(2)
	}
	if err != nil {
		logger.Errorf("%v: Failed (%s).", name, err)
		os.Exit(1)
	}
	fmt.Printf("%v (size %v)\n", reply.Value, reply.Size)
}

func handleSize(args []string) {
	client := dial()
	defer client.Close()
	size, err := client.Size()
	if err != nil {
		logger.Errorf("size: Failed (%s).", err)
		os.Exit(1)
	}
	fmt.Println(size)
}

func handleBench(args []string) {
	res, err := bench.Run(benchCfg)
	if err != nil {
		logger.Errorf("bench: %v", err)
		os.Exit(1)
	}
	fmt.Println(res)

	if benchDB == "" {
		return
	}
	d, err := db.Init(benchDB)
	if err != nil {
		logger.Errorf("bench: %v", err)
		os.Exit(1)
	}
	defer d.Close()
	id, err := d.AddRun(res)
	if err != nil {
		logger.Errorf("bench: %v", err)
		os.Exit(1)
	}
	fmt.Printf("bench: Recorded as run %v.\n", id)
}

func handleHistory(args []string) {
	d, err := db.Init(historyDB)
	if err != nil {
		logger.Errorf("history: %v", err)
		os.Exit(1)
	}
	defer d.Close()
	runs, err := d.Runs(histLimit)
	if err != nil {
		logger.Errorf("history: %v", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("history: No runs recorded.")
		return
	}
	for _, r := range runs {
		fmt.Printf("#%v [%v] %v\n", r.RunID, r.Created.Format("2006-01-02 15:04:05"), r.Result)
	}
}

func dial() *rpc.Client {
	if rpcPort <= 0 {
		logger.Fatalf("Port must be positive.")
		pflag.CommandLine.Usage()
		os.Exit(1)
	}

	client, err := rpc.Dial(rpcHost + ":" + strconv.Itoa(rpcPort))
	if err != nil {
		logger.Fatalf("Couldn't dial server (%s).", err)
		os.Exit(1)
	}
	return client
}

func printUsage() {
	fmt.Print(
		"Usage of fibqctl:\n" +
			"    fibqctl [flags] [command] [args...]\n")
	fmt.Println()
	fmt.Println("Flags:")
	pflag.CommandLine.PrintDefaults()
	fmt.Println()
	fmt.Println("Available commands:")
	for name, cmd := range commands {
		fmt.Printf("    %v: %v.\n", name, cmd.description)
	}
}

func logFormat(msg string, lvl logger.LogLevel) string {
	return fmt.Sprintf("%v: %v\n", lvl, msg)
}
