package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/minterhq/minterd/collection"
	"github.com/minterhq/minterd/minter"
	"github.com/minterhq/minterd/store"
	"github.com/rs/zerolog/log"
)

func runCommand(ctx context.Context, db *store.BadgerStore, conf *Configuration, name string, args []string) error {
	switch name {
	case "create-collection":
		return cmdCreateCollection(db, conf, args)
	case "set-minting-status":
		return cmdSetMintingStatus(db, conf, args)
	case "mint":
		return cmdMint(db, conf, args)
	case "whitelist-add":
		return cmdWhitelistAdd(db, conf, args)
	case "deposit":
		return cmdDeposit(db, args)
	case "burn":
		return cmdBurn(db, conf, args)
	case "transfer":
		return cmdTransfer(db, conf, args)
	case "init-migration":
		return cmdInitMigration(db, conf)
	case "migrate":
		return cmdMigrate(db, conf, args)
	case "events":
		return cmdEvents(db, args)
	}
	return fmt.Errorf("unknown command %s", name)
}

func cmdCreateCollection(db *store.BadgerStore, conf *Configuration, args []string) error {
	fs := flag.NewFlagSet("create-collection", flag.ContinueOnError)
	name := fs.String("name", "", "collection name")
	description := fs.String("description", "", "collection description")
	uri := fs.String("uri", "", "collection uri")
	maxSupply := fs.Uint64("max-supply", 0, "max supply, 0 for unlimited")
	prefix := fs.String("token-name-prefix", "", "token name prefix for recipient mints")
	tokenDescription := fs.String("token-description", "", "token description for recipient mints")
	tokenURIs := fs.String("token-uris", "", "comma separated token uris")
	uriWeights := fs.String("token-uri-weights", "", "comma separated uri weights")
	mutableDescription := fs.Bool("mutable-description", false, "collection description mutable")
	mutableURI := fs.Bool("mutable-uri", false, "collection uri mutable")
	mutableTokenDescription := fs.Bool("mutable-token-description", false, "token description mutable")
	mutableTokenName := fs.Bool("mutable-token-name", false, "token name mutable")
	mutableTokenProperties := fs.Bool("mutable-token-properties", false, "token properties mutable")
	mutableTokenURI := fs.Bool("mutable-token-uri", false, "token uri mutable")
	burnable := fs.Bool("burnable", false, "tokens burnable by creator")
	freezable := fs.Bool("freezable", false, "token transfers freezable by creator")
	soulbound := fs.Bool("soulbound", false, "tokens are soulbound")
	royaltyNum := fs.Uint64("royalty-numerator", 0, "royalty numerator")
	royaltyDen := fs.Uint64("royalty-denominator", 0, "royalty denominator")
	whitelist := fs.String("whitelist", "", "comma separated address:quota pairs")
	fee := fs.String("fee", "", "mint fee in coins")
	feeDestination := fs.String("fee-destination", "", "mint fee destination identity")
	err := fs.Parse(args)
	if err != nil {
		return err
	}

	params := &minter.InitParams{
		Name:        *name,
		Description: *description,
		URI:         *uri,
		MaxSupply:   *maxSupply,
		Flags: minter.Flags{
			MutableDescription:       *mutableDescription,
			MutableURI:               *mutableURI,
			MutableTokenDescription:  *mutableTokenDescription,
			MutableTokenName:         *mutableTokenName,
			MutableTokenProperties:   *mutableTokenProperties,
			MutableTokenURI:          *mutableTokenURI,
			TokensBurnableByCreator:  *burnable,
			TokensFreezableByCreator: *freezable,
			Soulbound:                *soulbound,
		},
	}
	if *royaltyDen > 0 {
		params.Royalty = &collection.Royalty{
			Numerator:   *royaltyNum,
			Denominator: *royaltyDen,
			Payee:       conf.App.Identity,
		}
	}
	if *prefix != "" {
		uris := splitList(*tokenURIs)
		weights, err := parseUints(splitList(*uriWeights))
		if err != nil {
			return err
		}
		params.MintConfig = &minter.MintConfig{
			NamePrefix:       *prefix,
			TokenDescription: *tokenDescription,
			TokenURIs:        uris,
			URIWeights:       weights,
		}
	}
	if *whitelist != "" {
		addresses, maxMints, err := parseWhitelist(*whitelist)
		if err != nil {
			return err
		}
		params.Guards.Whitelist = &minter.WhitelistConfig{
			Addresses: addresses,
			MaxMints:  maxMints,
		}
	}
	if *fee != "" {
		amount, err := minter.ParseCoinAmount(*fee)
		if err != nil {
			return err
		}
		destination := *feeDestination
		if destination == "" {
			destination = conf.App.Identity
		}
		params.Guards.Payment = &minter.PaymentConfig{
			Amount:      amount,
			Destination: destination,
		}
	}

	var tm *minter.TokenMinter
	err = db.Update(func(txn *store.Txn) error {
		tm, err = minter.Init(txn, conf.App.Identity, params)
		return err
	})
	if err != nil {
		return err
	}
	log.Info().Str("collection", tm.CollectionIdentity).Msg("collection created")
	fmt.Println(tm.CollectionIdentity)
	return nil
}

func cmdSetMintingStatus(db *store.BadgerStore, conf *Configuration, args []string) error {
	fs := flag.NewFlagSet("set-minting-status", flag.ContinueOnError)
	col := fs.String("collection", "", "collection identity")
	ready := fs.Bool("ready", true, "ready to mint")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	return db.Update(func(txn *store.Txn) error {
		return minter.SetMintingStatus(txn, conf.App.Identity, *col, *ready)
	})
}

func cmdMint(db *store.BadgerStore, conf *Configuration, args []string) error {
	fs := flag.NewFlagSet("mint", flag.ContinueOnError)
	col := fs.String("collection", "", "collection identity")
	recipient := fs.String("recipient", "", "recipient identity, defaults to caller")
	name := fs.String("name", "", "token name, empty for configured prefix naming")
	description := fs.String("description", "", "token description")
	uri := fs.String("uri", "", "token uri")
	amount := fs.Uint64("amount", 1, "quota units to consume")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	var token string
	err = db.Update(func(txn *store.Txn) error {
		if *name == "" {
			token, err = minter.MintToRecipient(txn, conf.App.Identity, *col, *recipient)
			return err
		}
		token, err = minter.Mint(txn, conf.App.Identity, &minter.MintParams{
			Collection:  *col,
			Recipient:   *recipient,
			Name:        *name,
			Description: *description,
			URI:         *uri,
			Amount:      *amount,
		})
		return err
	})
	if err != nil {
		return err
	}
	log.Info().Str("token", token).Str("collection", *col).Msg("token minted")
	fmt.Println(token)
	return nil
}

func cmdWhitelistAdd(db *store.BadgerStore, conf *Configuration, args []string) error {
	fs := flag.NewFlagSet("whitelist-add", flag.ContinueOnError)
	col := fs.String("collection", "", "collection identity")
	entries := fs.String("entries", "", "comma separated address:quota pairs")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	addresses, maxMints, err := parseWhitelist(*entries)
	if err != nil {
		return err
	}
	return db.Update(func(txn *store.Txn) error {
		return minter.AddToWhitelist(txn, conf.App.Identity, *col, addresses, maxMints)
	})
}

func cmdDeposit(db *store.BadgerStore, args []string) error {
	fs := flag.NewFlagSet("deposit", flag.ContinueOnError)
	identity := fs.String("identity", "", "identity to credit")
	amount := fs.String("amount", "", "amount in coins")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	base, err := minter.ParseCoinAmount(*amount)
	if err != nil {
		return err
	}
	return db.Update(func(txn *store.Txn) error {
		return txn.Deposit(*identity, base)
	})
}

func cmdBurn(db *store.BadgerStore, conf *Configuration, args []string) error {
	fs := flag.NewFlagSet("burn", flag.ContinueOnError)
	col := fs.String("collection", "", "collection identity")
	token := fs.String("token", "", "token identity")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	return db.Update(func(txn *store.Txn) error {
		return minter.Burn(txn, conf.App.Identity, *col, *token)
	})
}

func cmdTransfer(db *store.BadgerStore, conf *Configuration, args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ContinueOnError)
	token := fs.String("token", "", "token identity")
	to := fs.String("to", "", "new owner identity")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	return db.Update(func(txn *store.Txn) error {
		return minter.TransferToken(txn, conf.App.Identity, *token, *to)
	})
}

func cmdInitMigration(db *store.BadgerStore, conf *Configuration) error {
	var identity string
	err := db.Update(func(txn *store.Txn) error {
		var err error
		identity, err = minter.InitMigration(txn, conf.App.Identity)
		return err
	})
	if err != nil {
		return err
	}
	log.Info().Str("identity", identity).Msg("migration authority created")
	return nil
}

func cmdMigrate(db *store.BadgerStore, conf *Configuration, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	col := fs.String("collection", "", "collection identity to migrate")
	token := fs.String("token", "", "token identity to migrate")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	return db.Update(func(txn *store.Txn) error {
		if *token != "" {
			return minter.MigrateToken(txn, conf.App.Identity, *token)
		}
		return minter.MigrateCollection(txn, conf.App.Identity, *col)
	})
}

func cmdEvents(db *store.BadgerStore, args []string) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	limit := fs.Int("limit", 100, "maximum events to list")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	evts, err := db.ListEvents(*limit)
	if err != nil {
		return err
	}
	for _, evt := range evts {
		fmt.Printf("%s\t%s\t%s\t%s\n", evt.CreatedAt.Format("2006-01-02T15:04:05"), evt.Module, evt.Action, evt.Identity)
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func parseUints(list []string) ([]uint64, error) {
	var out []uint64
	for _, s := range list {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func parseWhitelist(s string) ([]string, []uint64, error) {
	var addresses []string
	var maxMints []uint64
	for _, pair := range splitList(s) {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, nil, fmt.Errorf("invalid whitelist entry %s", pair)
		}
		quota, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, nil, err
		}
		addresses = append(addresses, parts[0])
		maxMints = append(maxMints, quota)
	}
	return addresses, maxMints, nil
}
