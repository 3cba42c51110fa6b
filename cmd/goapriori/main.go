package main

import "github.com/dbsmedya/goapriori/cmd/goapriori/cmd"

func main() {
	cmd.Execute()
}
