package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"petchat/pkg/petchat"
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:8000", "petchat server base URL")
		user    = flag.String("user", "demo-user", "user id")
		petID   = flag.String("pet", "", "pet id to chat with (empty lists your pets)")
	)
	flag.Parse()

	ctx := context.Background()
	client := petchat.NewClient(*baseURL, petchat.WithUser(*user))

	if *petID == "" {
		pets, err := client.ListPets(ctx)
		if err != nil {
			log.Fatalf("list pets: %v", err)
		}
		if len(pets) == 0 {
			fmt.Println("no pets yet — create one first")
			return
		}
		fmt.Println("your pets:")
		for _, p := range pets {
			fmt.Printf("  %s  %s (%s)\n", p.ID, p.Name, p.PetType)
		}
		fmt.Println("\nrun again with -pet <id>")
		return
	}

	ctrl, err := petchat.NewController(petchat.Session{UserID: *user}, client, client)
	if err != nil {
		log.Fatalf("controller: %v", err)
	}
	if err := ctrl.Initialize(ctx, *petID); err != nil {
		log.Fatalf("initialize: %v", err)
	}

	p := ctrl.Pet()
	fmt.Printf("chatting with %s the %s — type a message, /clear, or /quit\n\n", p.Name, p.PetType)
	for _, e := range ctrl.Messages() {
		printEntry(p.Name, e)
	}

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "/quit":
			return
		case "/clear":
			fmt.Print("clear all history? [y/N] ")
			if !sc.Scan() {
				return
			}
			confirmed := strings.EqualFold(strings.TrimSpace(sc.Text()), "y")
			if err := ctrl.Clear(ctx, confirmed); err != nil {
				fmt.Printf("(clear failed: %v)\n", err)
				continue
			}
			fmt.Println("(history cleared)")
		default:
			reply, err := ctrl.Submit(ctx, line)
			if err != nil {
				fmt.Printf("(send failed, message kept: %v)\n", err)
				continue
			}
			fmt.Printf("%s: %s\n", p.Name, reply.Content)
		}
	}
}

func printEntry(petName string, e petchat.Entry) {
	who := "you"
	if e.Role == petchat.RolePet {
		who = petName
	}
	suffix := ""
	if e.Failed {
		suffix = " (failed to send)"
	}
	fmt.Printf("%s: %s%s\n", who, e.Content, suffix)
}
