// Utilitário de linha de comando para gerar hashes Argon2id, útil para
// semear contas locais do esquema legado direto no banco.
package main

import (
	"fmt"
	"os"

	"github.com/academiafit/bff/internal/auth"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "uso: hashpass <senha>")
		os.Exit(1)
	}

	hash, err := auth.Hash(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "erro ao gerar hash:", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
