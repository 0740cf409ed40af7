package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ft-ledger/config"
	ftcontract "github.com/nspcc-dev/ft-ledger/contracts/ft"
	"github.com/nspcc-dev/ft-ledger/contracts/ft/ftconst"
	"github.com/nspcc-dev/ft-ledger/deploy"
	"github.com/nspcc-dev/ft-ledger/dump"
	"github.com/nspcc-dev/ft-ledger/host"
	"github.com/nspcc-dev/ft-ledger/internal/ledger"
	"github.com/nspcc-dev/ft-ledger/rpc/ft"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var (
	initCommand = cli.Command{
		Name:   "init",
		Usage:  "Initialize the token with the configured owner, supply and metadata",
		Action: initToken,
	}
	supplyCommand = cli.Command{
		Name:   "supply",
		Usage:  "Print total supply of the token",
		Action: printSupply,
	}
	balanceCommand = cli.Command{
		Name:      "balance",
		Usage:     "Print token balance of the account",
		ArgsUsage: "ACCOUNT",
		Action:    printBalance,
	}
	holdersCommand = cli.Command{
		Name:   "holders",
		Usage:  "List all registered accounts with their balances",
		Action: printHolders,
	}
	metadataCommand = cli.Command{
		Name:   "metadata",
		Usage:  "Print token metadata",
		Action: printMetadata,
	}
	storageBalanceCommand = cli.Command{
		Name:      "storage-balance",
		Usage:     "Print storage balance of the account and registration bounds",
		ArgsUsage: "[ACCOUNT]",
		Action:    printStorageBalance,
	}
	registerCommand = cli.Command{
		Name:      "register",
		Usage:     "Register the account paying for its storage",
		ArgsUsage: "[ACCOUNT]",
		Flags:     []cli.Flag{depositFlag},
		Action:    register,
	}
	unregisterCommand = cli.Command{
		Name:   "unregister",
		Usage:  "Unregister the signing account and get its storage deposit back",
		Flags:  []cli.Flag{forceFlag},
		Action: unregister,
	}
	transferCommand = cli.Command{
		Name:      "transfer",
		Usage:     "Transfer tokens to the account",
		ArgsUsage: "TO AMOUNT",
		Flags:     []cli.Flag{memoFlag, paymentFlag},
		Action:    transfer,
	}
	transferCallCommand = cli.Command{
		Name:      "transfer-call",
		Usage:     "Transfer tokens to the receiver contract and notify it",
		ArgsUsage: "TO AMOUNT",
		Flags:     []cli.Flag{memoFlag, paymentFlag, payloadFlag},
		Action:    transferAndNotify,
	}
	mintCommand = cli.Command{
		Name:      "mint",
		Usage:     "Mint new tokens to the account, signed by the owner only",
		ArgsUsage: "TO AMOUNT",
		Flags:     []cli.Flag{memoFlag},
		Action:    mint,
	}
	dumpCommand = cli.Command{
		Name:   "dump",
		Usage:  "Dump the ledger state into the directory",
		Flags:  []cli.Flag{outFlag, labelFlag},
		Action: dumpLedger,
	}
	restoreCommand = cli.Command{
		Name:   "restore",
		Usage:  "Restore the ledger state from the latest dump with the label",
		Flags:  []cli.Flag{outFlag, labelFlag},
		Action: restoreLedger,
	}
)

// session is an opened ledger with the token bindings acting for the signing
// account.
type session struct {
	cfg    *config.Config
	log    *zap.Logger
	exec   *host.Executor
	token  *ft.Contract
	signer string
}

func openSession(ctx *cli.Context) (*session, error) {
	var (
		cfg = config.Default()
		err error
	)

	if p := ctx.GlobalString(configFlag.Name); p != "" {
		cfg, err = config.Load(p)
		if err != nil {
			return nil, err
		}
	}

	l, err := cfg.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	e, err := ledger.Open(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	signer := ctx.GlobalString(asFlag.Name)
	if signer == "" {
		signer = cfg.Token.Owner
	}

	return &session{
		cfg:    cfg,
		log:    l,
		exec:   e,
		token:  ft.New(e.NewActor(context.Background(), signer), cfg.Ledger.Contract),
		signer: signer,
	}, nil
}

func (s *session) close() {
	if err := s.exec.Close(); err != nil {
		s.log.Warn("failed to close ledger", zap.Error(err))
	}
	_ = s.log.Sync()
}

// withSession runs f on the opened ledger and converts returned error into
// the exit one.
func withSession(f func(*cli.Context, *session) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		s, err := openSession(ctx)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer s.close()

		err = f(ctx, s)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		return nil
	}
}

func (s *session) decimals() (int, error) {
	d, err := s.token.Decimals()
	if err != nil {
		return 0, fmt.Errorf("read token decimals: %w", err)
	}
	return d, nil
}

// parseAmount parses decimal token amount according to the token precision.
func (s *session) parseAmount(str string) (*big.Int, error) {
	d, err := s.decimals()
	if err != nil {
		return nil, err
	}

	res, err := fixedn.FromString(str, d)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", str, err)
	}
	return res, nil
}

func (s *session) formatAmount(amount *big.Int) string {
	d, err := s.decimals()
	if err != nil {
		return amount.String()
	}
	return fixedn.ToString(amount, d)
}

// payment returns payment from the flag or the default one if not set.
func payment(ctx *cli.Context, def *uint256.Int) (*big.Int, error) {
	str := ctx.String(paymentFlag.Name)
	if str == "" {
		return def.ToBig(), nil
	}

	res, ok := new(big.Int).SetString(str, 10)
	if !ok {
		return nil, fmt.Errorf("invalid payment %q", str)
	}
	return res, nil
}

func requireArgs(ctx *cli.Context, n int) error {
	if ctx.NArg() != n {
		return fmt.Errorf("expected %d arguments, got %d (usage: %s %s)",
			n, ctx.NArg(), ctx.Command.Name, ctx.Command.ArgsUsage)
	}
	return nil
}

func printReceipt(ctx *cli.Context, r *host.Receipt) {
	w := ctx.App.Writer
	fmt.Fprintf(w, "Height: %d\n", r.Height)
	fmt.Fprintf(w, "State: %s\n", r.State)
	if r.Refund != nil && !r.Refund.IsZero() {
		fmt.Fprintf(w, "Refund: %s\n", r.Refund.ToBig())
	}
	fmt.Fprintf(w, "Storage: %d -> %d\n", r.StorageBefore, r.StorageAfter)
	for _, l := range r.Logs {
		fmt.Fprintf(w, "Log: %s\n", l)
	}
	for _, c := range r.Chained {
		fmt.Fprintf(w, "Chained %s.%s: %s\n", c.Contract, c.Method, c.State)
		for _, l := range c.Logs {
			fmt.Fprintf(w, "  Log: %s\n", l)
		}
	}
}

var initToken = withSession(func(ctx *cli.Context, s *session) error {
	supply, err := s.cfg.TotalSupply()
	if err != nil {
		return err
	}
	refHash, err := s.cfg.ReferenceHash()
	if err != nil {
		return err
	}

	m := s.cfg.Token.Metadata

	return deploy.Deploy(context.Background(), deploy.Prm{
		Logger:      s.log,
		Actor:       s.exec.NewActor(context.Background(), s.cfg.Token.Owner),
		Contract:    s.cfg.Ledger.Contract,
		Owner:       s.cfg.Token.Owner,
		TotalSupply: supply.ToBig(),
		Metadata: ft.Metadata{
			Spec:          ftconst.MetadataSpec,
			Name:          m.Name,
			Symbol:        m.Symbol,
			Icon:          m.Icon,
			Reference:     m.Reference,
			ReferenceHash: refHash,
			Decimals:      big.NewInt(int64(m.Decimals)),
		},
	})
})

var printSupply = withSession(func(ctx *cli.Context, s *session) error {
	supply, err := s.token.TotalSupply()
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, s.formatAmount(supply))
	return nil
})

var printBalance = withSession(func(ctx *cli.Context, s *session) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}

	bal, err := s.token.BalanceOf(ctx.Args().Get(0))
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, s.formatAmount(bal))
	return nil
})

var printHolders = withSession(func(ctx *cli.Context, s *session) error {
	return ftcontract.IterateBalances(s.exec, s.cfg.Ledger.Contract, func(account string, balance *uint256.Int) error {
		_, err := fmt.Fprintf(ctx.App.Writer, "%s\t%s\n", account, s.formatAmount(balance.ToBig()))
		return err
	})
})

var printMetadata = withSession(func(ctx *cli.Context, s *session) error {
	m, err := s.token.Metadata()
	if err != nil {
		return err
	}

	w := ctx.App.Writer
	fmt.Fprintf(w, "Spec: %s\n", m.Spec)
	fmt.Fprintf(w, "Name: %s\n", m.Name)
	fmt.Fprintf(w, "Symbol: %s\n", m.Symbol)
	fmt.Fprintf(w, "Decimals: %s\n", m.Decimals)
	if m.Icon != "" {
		fmt.Fprintf(w, "Icon: %s\n", m.Icon)
	}
	if m.Reference != "" {
		fmt.Fprintf(w, "Reference: %s (%x)\n", m.Reference, m.ReferenceHash)
	}
	return nil
})

var printStorageBalance = withSession(func(ctx *cli.Context, s *session) error {
	account := s.signer
	if ctx.NArg() > 0 {
		account = ctx.Args().Get(0)
	}

	w := ctx.App.Writer

	bounds, err := s.token.StorageBalanceBounds()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Bounds: %s..%s\n", bounds.Min, bounds.Max)

	bal, err := s.token.StorageBalanceOf(account)
	if err != nil {
		return err
	}
	if bal == nil {
		fmt.Fprintf(w, "Account %s is not registered\n", account)
		return nil
	}

	fmt.Fprintf(w, "Total: %s\nAvailable: %s\n", bal.Total, bal.Available)
	return nil
})

var register = withSession(func(ctx *cli.Context, s *session) error {
	account := s.signer
	if ctx.NArg() > 0 {
		account = ctx.Args().Get(0)
	}

	var deposit *big.Int

	if str := ctx.String(depositFlag.Name); str != "" {
		var ok bool
		deposit, ok = new(big.Int).SetString(str, 10)
		if !ok {
			return fmt.Errorf("invalid deposit %q", str)
		}
	} else {
		bounds, err := s.token.StorageBalanceBounds()
		if err != nil {
			return err
		}
		deposit = bounds.Max
	}

	r, err := s.token.Register(deposit, account)
	if err != nil {
		return err
	}

	printReceipt(ctx, r)
	return nil
})

var unregister = withSession(func(ctx *cli.Context, s *session) error {
	r, err := s.token.Unregister(s.signer, ctx.Bool(forceFlag.Name))
	if err != nil {
		return err
	}

	printReceipt(ctx, r)
	if len(r.Stack) > 0 {
		if ok, err := r.Stack[0].TryBool(); err == nil && !ok {
			fmt.Fprintf(ctx.App.Writer, "Account %s is not registered\n", s.signer)
		}
	}
	return nil
})

// transferArgs parses common arguments of transfer commands.
func (s *session) transferArgs(ctx *cli.Context) (string, *big.Int, *big.Int, error) {
	if err := requireArgs(ctx, 2); err != nil {
		return "", nil, nil, err
	}

	amount, err := s.parseAmount(ctx.Args().Get(1))
	if err != nil {
		return "", nil, nil, err
	}

	minPayment, err := s.cfg.MinTransferPayment()
	if err != nil {
		return "", nil, nil, err
	}

	pay, err := payment(ctx, minPayment)
	if err != nil {
		return "", nil, nil, err
	}

	return ctx.Args().Get(0), amount, pay, nil
}

func memo(ctx *cli.Context) []byte {
	if str := ctx.String(memoFlag.Name); str != "" {
		return []byte(str)
	}
	return nil
}

var transfer = withSession(func(ctx *cli.Context, s *session) error {
	to, amount, pay, err := s.transferArgs(ctx)
	if err != nil {
		return err
	}

	r, err := s.token.Transfer(pay, s.signer, to, amount, memo(ctx))
	if err != nil {
		return err
	}

	printReceipt(ctx, r)
	return nil
})

var transferAndNotify = withSession(func(ctx *cli.Context, s *session) error {
	to, amount, pay, err := s.transferArgs(ctx)
	if err != nil {
		return err
	}

	var payload []byte
	if str := ctx.String(payloadFlag.Name); str != "" {
		payload = []byte(str)
	}

	r, err := s.token.TransferAndNotify(pay, s.signer, to, amount, memo(ctx), payload)
	if err != nil {
		return err
	}

	printReceipt(ctx, r)

	pending, err := ft.PendingTransferFromReceipt(r)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Ticket: %s\n", pending.Ticket)

	events, err := ft.TransferEventsFromReceipt(r)
	if err != nil {
		return err
	}
	for _, ev := range events {
		fmt.Fprintf(ctx.App.Writer, "Transfer: %s -> %s %s\n", orNone(ev.From), orNone(ev.To), s.formatAmount(ev.Amount))
	}
	return nil
})

func orNone(account string) string {
	if account == "" {
		return "<none>"
	}
	return account
}

var mint = withSession(func(ctx *cli.Context, s *session) error {
	if err := requireArgs(ctx, 2); err != nil {
		return err
	}

	amount, err := s.parseAmount(ctx.Args().Get(1))
	if err != nil {
		return err
	}

	r, err := s.token.Mint(ctx.Args().Get(0), amount, memo(ctx))
	if err != nil {
		return err
	}

	printReceipt(ctx, r)
	return nil
})

func dumpLabel(ctx *cli.Context) (string, error) {
	label := ctx.String(labelFlag.Name)
	if label == "" {
		return "", errors.New("missing dump label")
	}
	return label, nil
}

var dumpLedger = withSession(func(ctx *cli.Context, s *session) error {
	label, err := dumpLabel(ctx)
	if err != nil {
		return err
	}

	id, err := dump.Executor(s.exec, ctx.String(outFlag.Name), label, ledger.Contracts(s.cfg))
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.App.Writer, "Ledger is dumped as %s\n", id)
	return nil
})

var restoreLedger = withSession(func(ctx *cli.Context, s *session) error {
	label, err := dumpLabel(ctx)
	if err != nil {
		return err
	}

	dir := ctx.String(outFlag.Name)

	var (
		latest dump.ID
		found  bool
	)

	err = dump.IterateDumps(dir, func(id dump.ID, _ *dump.Reader) {
		if id.Label == label && (!found || id.Height > latest.Height) {
			latest, found = id, true
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no dumps with label %q", label)
	}

	var restoreErr error

	err = dump.IterateDumps(dir, func(id dump.ID, r *dump.Reader) {
		if id == latest && restoreErr == nil {
			restoreErr = r.Restore(s.exec)
		}
	})
	if err != nil {
		return err
	}
	if restoreErr != nil {
		return fmt.Errorf("restore %s: %w", latest, restoreErr)
	}

	fmt.Fprintf(ctx.App.Writer, "Ledger is restored from %s\n", latest)
	return nil
})
