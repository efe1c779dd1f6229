package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

var parser = flags.NewNamedParser("albatch", flags.PassDoubleDash)

func printHelp(parser *flags.Parser) {
	// Print help for active command
	parser.Command = parser.Command.Active
	var b bytes.Buffer
	parser.WriteHelp(&b)
	fmt.Println(b.String())
}

func main() {
	var err error
	args := []string{}
	if args, err = parser.ParseArgs(os.Args[1:]); err != nil {
		goto errHandler
	}
	os.Exit(0)
errHandler:
	switch flagsErr := err.(type) {
	case *flags.Error:
		if flagsErr.Type == flags.ErrHelp ||
			flagsErr.Type == flags.ErrCommandRequired ||
			flagsErr.Type == flags.ErrRequired {
			printHelp(parser)
			os.Exit(0)
		} else if flagsErr.Type == flags.ErrUnknownCommand {
			if len(args) > 0 {
				fmt.Printf("`%v' not supported\n\n", args[0])
			}
			if parser.Command.Active != nil {
				printHelp(parser)
			}
		} else if flagsErr.Type == flags.ErrMarshal {
			fmt.Println("invalid syntax")
			printHelp(parser)
			os.Exit(1)
		}
		fmt.Println(flagsErr.Error())
		os.Exit(1)

	default:
		fmt.Println(flagsErr.Error())
		os.Exit(1)

	}
}

func createHelpErr() error {
	err := flags.Error{
		Type:    flags.ErrHelp,
		Message: "show help message",
	}
	return &err
}
