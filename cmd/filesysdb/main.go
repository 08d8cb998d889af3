package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ergochat/readline"

	"github.com/fictorial/filesysdb"
	"github.com/fictorial/filesysdb/records"
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),

	readline.PcItem("use"),
	readline.PcItem("collections"),

	readline.PcItem("put"),
	readline.PcItem("get"),
	readline.PcItem("del"),
	readline.PcItem("count"),
	readline.PcItem("list"),
	readline.PcItem("scan"),
	readline.PcItem("find"),
	readline.PcItem("path"),

	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

type config struct {
	Base        string `json:"base"`
	Collections []struct {
		Name         string `json:"name"`
		CacheSize    int    `json:"cache_size"`
		GenerateIds  bool   `json:"generate_ids"`
		DisableCache bool   `json:"disable_cache"`
		Indexes      []struct {
			Fields          []string `json:"fields"`
			Unique          bool     `json:"unique"`
			CaseInsensitive bool     `json:"case_insensitive"`
		} `json:"indexes"`
	} `json:"collections"`
}

func loadConfig(path string) (base string, opts filesysdb.Options, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", opts, err
	}
	var cfg config
	if err = json.Unmarshal(data, &cfg); err != nil {
		return "", opts, fmt.Errorf("parse %q: %w", path, err)
	}
	base = cfg.Base
	if base == "" {
		base = "data"
	}
	for _, c := range cfg.Collections {
		co := filesysdb.CollectionOptions{
			Name:        c.Name,
			CacheSize:   c.CacheSize,
			GenerateIds: c.GenerateIds,
		}
		if c.DisableCache {
			co.CacheSize = filesysdb.CacheOff
		}
		for _, ix := range c.Indexes {
			co.Indexes = append(co.Indexes, filesysdb.IndexOptions{
				Fields:          ix.Fields,
				Unique:          ix.Unique,
				CaseInsensitive: ix.CaseInsensitive,
			})
		}
		opts.Collections = append(opts.Collections, co)
	}
	return base, opts, nil
}

var ErrNoCollection = errors.New("no collection selected, try: use <name>")

type shell struct {
	reg *filesysdb.Registry
	cur *filesysdb.Collection
}

func (sh *shell) collection() (*filesysdb.Collection, error) {
	if sh.cur == nil {
		return nil, ErrNoCollection
	}
	return sh.cur, nil
}

func (sh *shell) run(cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Println("use <collection> | collections | put <json> | get <id> | del <id>")
		fmt.Println("count | list | scan <field,...> | find <field,...> <json values> | path <id>")
		return nil
	case "collections":
		for _, name := range sh.reg.CollectionNames() {
			fmt.Println(name)
		}
		return nil
	case "use":
		if len(args) != 1 {
			return errors.New("usage: use <collection>")
		}
		c, err := sh.reg.Collection(args[0])
		if err != nil {
			return err
		}
		sh.cur = c
		return nil
	}

	c, err := sh.collection()
	if err != nil {
		return err
	}
	switch cmd {
	case "put":
		var rec records.Record
		if err := json.Unmarshal([]byte(strings.Join(args, " ")), &rec); err != nil {
			return fmt.Errorf("usage: put {\"id\":...}: %w", err)
		}
		saved, err := c.Save(rec)
		if err != nil {
			return err
		}
		id, _ := saved.Id()
		fmt.Printf("saved %s\n", id)
	case "get":
		if len(args) != 1 {
			return errors.New("usage: get <id>")
		}
		rec, err := c.Get(args[0])
		if err != nil {
			return err
		}
		return printRecord(rec)
	case "del":
		if len(args) != 1 {
			return errors.New("usage: del <id>")
		}
		return c.DeleteId(args[0])
	case "count":
		n, err := c.Count()
		if err != nil {
			return err
		}
		fmt.Println(n)
	case "list":
		for id, err := range c.EachObjectId() {
			if err != nil {
				return err
			}
			fmt.Println(id)
		}
	case "scan":
		if len(args) != 1 {
			return errors.New("usage: scan <field,...>")
		}
		seq, err := c.EachIndexedObject(strings.Split(args[0], ","))
		if err != nil {
			return err
		}
		for rec, err := range seq {
			if err != nil {
				return err
			}
			if err := printRecord(rec); err != nil {
				return err
			}
		}
	case "find":
		if len(args) < 2 {
			return errors.New("usage: find <field,...> <json value> ...")
		}
		values := make([]any, 0, len(args)-1)
		for _, arg := range args[1:] {
			var v any
			if err := json.Unmarshal([]byte(arg), &v); err != nil {
				v = arg // bare words are strings
			}
			values = append(values, v)
		}
		seq, err := c.Lookup(strings.Split(args[0], ","), values)
		if err != nil {
			return err
		}
		for rec, err := range seq {
			if err != nil {
				return err
			}
			if err := printRecord(rec); err != nil {
				return err
			}
		}
	case "path":
		if len(args) != 1 {
			return errors.New("usage: path <id>")
		}
		fmt.Println(c.ObjectPath(args[0]))
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func printRecord(rec records.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func main() {
	configPath := flag.String("config", "filesysdb.json", "registry config file")
	flag.Parse()

	base, opts, err := loadConfig(*configPath)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	reg, err := filesysdb.Open(base, opts)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	defer reg.Close()

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "◌ ",
		HistoryFile:     ".filesysdb_cmd_log.txt",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	sh := &shell{reg: reg}
	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		args := strings.Split(line, " ")
		cmd := args[0]
		if cmd == "exit" || cmd == "quit" {
			break
		}
		if err := sh.run(cmd, args[1:]); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err.Error())
		}
	}
}
