// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

/*
Pmrtool is a program for checking the integrity of PMR monitoring archives.

A PMR archive is a password protected zip archive whose comment carries an encrypted signature of
the files it contains. Commands are provided to verify an archive against its signature, to
compute the signature of a directory, to create a signed archive, and to display the contents of
an archive.
*/
package main
