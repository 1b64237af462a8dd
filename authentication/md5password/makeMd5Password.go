package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/abbot/go-http-auth"
)

// Prints an entry for the htpasswd file the shelf server checks
// uploads and deletions against.
func main() {

	var salt []byte
	if len(os.Args) < 3 {
		fmt.Println("usage: makeMd5Password <user> <password> [salt]")
		os.Exit(1)
	}
	if len(os.Args) > 3 {
		salt = []byte(os.Args[3])
	} else {
		r := rand.New(rand.NewSource(int64(time.Now().Unix())))
		salt = []byte(strconv.Itoa(r.Int()))
	}
	magic := []byte("$apr1$")

	fmt.Println(os.Args[1] + ":" + string(auth.MD5Crypt([]byte(os.Args[2]), salt, magic)))
}
