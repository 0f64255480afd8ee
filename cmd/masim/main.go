// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

func main() {
	Execute()
}
